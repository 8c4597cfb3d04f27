package tokenizer

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/samcharles93/loom/internal/tplparser"
)

// HFTokenizer is the configurable backend: a byte-level BPE tokenizer whose
// vocabulary, merge rules, and control-token behavior all come from the two
// configuration documents. Unlike the fixed-vocabulary adapter it owns its
// vocabulary, so the richer contract is implemented natively and failures
// are reported, not absorbed.
type HFTokenizer struct {
	encoder      map[string]int32
	decoder      []string
	bpeRanks     map[Pair]int
	cache        map[string][]string
	byteEncoder  map[byte]string
	byteDecoder  map[string]byte
	pattern      *regexp.Regexp
	ignoreMerges bool
	special      []string
	cfg          HFConfig
}

// LoadHFTokenizer reads the two documents from disk. A missing config file
// is tolerated; a missing data file is not.
func LoadHFTokenizer(tokJSON, tokConfig string) (*HFTokenizer, error) {
	data, err := os.ReadFile(tokJSON)
	if err != nil {
		return nil, err
	}
	var cfg []byte
	if tokConfig != "" {
		if raw, err := os.ReadFile(tokConfig); err == nil {
			cfg = raw
		}
	}
	return LoadHFTokenizerBytes(data, cfg)
}

// LoadHFTokenizerBytes builds a configurable tokenizer from the raw
// tokenizer.json and tokenizer_config.json documents.
func LoadHFTokenizerBytes(tokJSON, tokConfig []byte) (*HFTokenizer, error) {
	tj, err := parseHFDocument(tokJSON)
	if err != nil {
		return nil, err
	}

	encoder := make(map[string]int32, len(tj.Model.Vocab)+len(tj.AddedTokens))
	maxID := -1
	for tok, id := range tj.Model.Vocab {
		encoder[tok] = int32(id)
		if id > maxID {
			maxID = id
		}
	}
	for _, at := range tj.AddedTokens {
		encoder[at.Content] = int32(at.ID)
		if at.ID > maxID {
			maxID = at.ID
		}
	}
	decoder := make([]string, maxID+1)
	for tok, id := range tj.Model.Vocab {
		decoder[id] = tok
	}
	for _, at := range tj.AddedTokens {
		decoder[at.ID] = at.Content
	}

	bpeRanks := make(map[Pair]int, len(tj.Model.Merges))
	rank := 0
	for _, raw := range tj.Model.Merges {
		line := ""
		switch v := raw.(type) {
		case string:
			line = v
		case []any:
			if len(v) == 2 {
				a, aok := v[0].(string)
				b, bok := v[1].(string)
				if aok && bok {
					line = a + " " + b
				}
			}
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			continue
		}
		p := Pair{A: parts[0], B: parts[1]}
		if _, ok := bpeRanks[p]; !ok {
			bpeRanks[p] = rank
			rank++
		}
	}

	byteEncoder, byteDecoder := bytesToUnicode()
	special := collectSpecials(decoder)
	sortSpecialsLongestFirst(special)

	return &HFTokenizer{
		encoder:      encoder,
		decoder:      decoder,
		bpeRanks:     bpeRanks,
		cache:        make(map[string][]string),
		byteEncoder:  byteEncoder,
		byteDecoder:  byteDecoder,
		pattern:      buildHFPattern(tj),
		ignoreMerges: tj.Model.IgnoreMerges,
		special:      special,
		cfg:          deriveHFConfig(tj, tokConfig, encoder),
	}, nil
}

func (t *HFTokenizer) Kind() Kind { return KindHF }

func (t *HFTokenizer) Encode(text string) ([]int32, error) {
	var ids []int32
	if t.cfg.AddBOS && t.cfg.BOSTokenID >= 0 {
		ids = append(ids, t.cfg.BOSTokenID)
	}
	for _, part := range splitSpecials(text, t.special) {
		if part.isSpecial {
			id, ok := t.encoder[part.text]
			if !ok {
				return nil, fmt.Errorf("unknown special token: %q", part.text)
			}
			ids = append(ids, id)
			continue
		}
		for _, token := range t.pattern.FindAllString(part.text, -1) {
			for _, bpeTok := range t.bpe(t.byteEncode(token)) {
				id, ok := t.encoder[bpeTok]
				if !ok {
					if t.cfg.UNKTokenID >= 0 {
						ids = append(ids, t.cfg.UNKTokenID)
						continue
					}
					return nil, fmt.Errorf("unknown token: %q", bpeTok)
				}
				ids = append(ids, id)
			}
		}
	}
	if t.cfg.AddEOS && t.cfg.EOSTokenID >= 0 {
		ids = append(ids, t.cfg.EOSTokenID)
	}
	return ids, nil
}

func (t *HFTokenizer) Decode(ids []int32) (string, error) {
	var b []byte
	for _, id := range ids {
		if id < 0 || int(id) >= len(t.decoder) {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		token := t.decoder[id]
		if isSpecialToken(token) {
			b = append(b, token...)
			continue
		}
		for _, r := range token {
			if by, ok := t.byteDecoder[string(r)]; ok {
				b = append(b, by)
			} else {
				b = append(b, string(r)...)
			}
		}
	}
	return string(b), nil
}

// Tokenize reports the vocabulary string of each encoded token, in the
// byte-level form the documents use.
func (t *HFTokenizer) Tokenize(text string) ([]string, error) {
	ids, err := t.Encode(text)
	if err != nil {
		return nil, err
	}
	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i] = t.decoder[id]
	}
	return pieces, nil
}

func (t *HFTokenizer) TokenToID(token string) (int32, bool) {
	id, ok := t.encoder[token]
	return id, ok
}

func (t *HFTokenizer) IDToToken(id int32) (string, bool) {
	if id < 0 || int(id) >= len(t.decoder) {
		return "", false
	}
	token := t.decoder[id]
	if token == "" {
		return "", false
	}
	return token, true
}

func (t *HFTokenizer) TokensToIDs(tokens []string) []*int32 {
	out := make([]*int32, len(tokens))
	for i, tok := range tokens {
		if id, ok := t.TokenToID(tok); ok {
			v := id
			out[i] = &v
		}
	}
	return out
}

func (t *HFTokenizer) IDsToTokens(ids []*int32) []*string {
	out := make([]*string, len(ids))
	for i, id := range ids {
		if id == nil {
			continue
		}
		if tok, ok := t.IDToToken(*id); ok {
			v := tok
			out[i] = &v
		}
	}
	return out
}

// ApplyChatTemplate renders the conversation through the configured chat
// template and encodes the result. A tokenizer without a template, or with
// one the renderer does not recognize, refuses rather than guessing.
func (t *HFTokenizer) ApplyChatTemplate(messages []Message, opts TemplateOptions) ([]int32, error) {
	if t.cfg.ChatTemplate == "" {
		return nil, newChatTemplateError("tokenizer defines no chat template")
	}
	out, ok, err := tplparser.Render(tplparser.RenderOptions{
		Template:            t.cfg.ChatTemplate,
		BOSToken:            t.cfg.BOSToken,
		EOSToken:            t.cfg.EOSToken,
		AddBOS:              t.cfg.AddBOS,
		AddGenerationPrompt: opts.AddGenerationPrompt,
		Messages:            messages,
		Tools:               opts.Tools,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newChatTemplateError("unrecognized chat template")
	}
	return t.Encode(out)
}

func (t *HFTokenizer) SupportsChatTemplate() bool {
	return tplparser.Supported(t.cfg.ChatTemplate)
}

func (t *HFTokenizer) SpecialTokens() SpecialTokens {
	return SpecialTokens{
		BOS: SpecialToken{Text: t.cfg.BOSToken, ID: t.cfg.BOSTokenID},
		EOS: SpecialToken{Text: t.cfg.EOSToken, ID: t.cfg.EOSTokenID},
		UNK: SpecialToken{Text: t.cfg.UNKToken, ID: t.cfg.UNKTokenID},
	}
}

// Config exposes the derived behavior settings for inspection.
func (t *HFTokenizer) Config() HFConfig { return t.cfg }

func (t *HFTokenizer) byteEncode(s string) string {
	var b strings.Builder
	for _, by := range []byte(s) {
		b.WriteString(t.byteEncoder[by])
	}
	return b.String()
}

func (t *HFTokenizer) bpe(token string) []string {
	if v, ok := t.cache[token]; ok {
		return v
	}
	if t.ignoreMerges {
		if _, ok := t.encoder[token]; ok {
			out := []string{token}
			t.cache[token] = out
			return out
		}
	}
	word := splitRunes(token)
	pairs := getPairs(word)
	for len(pairs) > 0 {
		bestRank := int(^uint(0) >> 1)
		bestPair := Pair{}
		found := false
		for p := range pairs {
			if rank, ok := t.bpeRanks[p]; ok {
				if rank < bestRank {
					bestRank = rank
					bestPair = p
					found = true
				}
			}
		}
		if !found {
			break
		}
		word = mergePair(word, bestPair)
		if len(word) == 1 {
			break
		}
		pairs = getPairs(word)
	}
	t.cache[token] = word
	return word
}

func buildHFPattern(tj *hfTokenizerJSON) *regexp.Regexp {
	// Default to GPT2-ish regex.
	pat := `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`
	if tj.PreTokenizer.Type == "Sequence" {
		for _, p := range tj.PreTokenizer.Pretokenizers {
			if p.Type == "Split" && p.Pattern.Regex != "" {
				pat = p.Pattern.Regex
				break
			}
		}
	}
	// Llama3-style regexes carry lookahead and inline case flags Go's
	// engine rejects. Substitute the llama.cpp equivalent.
	if strings.Contains(pat, "(?!\\S)") || strings.Contains(pat, "(?i:") {
		pat = `(?:'[sS]|'[tT]|'[rR][eE]|'[vV][eE]|'[mM]|'[lL][lL]|'[dD])|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+`
	}
	return regexp.MustCompile(pat)
}
