package tokenizer

import (
	"fmt"

	esentencepiece "github.com/eliben/go-sentencepiece"
)

// Conventional SentencePiece control-token assignments. They are fixed for
// this backend and never read from the model file.
var sentencePieceSpecials = SpecialTokens{
	BOS: SpecialToken{Text: "<s>", ID: 1},
	EOS: SpecialToken{Text: "</s>", ID: 2},
	UNK: SpecialToken{Text: "<unk>", ID: 0},
}

// codec is the narrow surface the adapter needs from the SentencePiece
// engine. It exists so the adapter's behavior is testable without a trained
// model file.
type codec interface {
	EncodeIDs(text string) ([]int32, error)
	DecodeIDs(ids []int32) (string, error)
}

// spCodec bridges the go-sentencepiece processor to the codec seam.
type spCodec struct {
	proc *esentencepiece.Processor
}

func (c *spCodec) EncodeIDs(text string) ([]int32, error) {
	toks := c.proc.Encode(text)
	ids := make([]int32, len(toks))
	for i, tok := range toks {
		ids[i] = int32(tok.ID)
	}
	return ids, nil
}

func (c *spCodec) DecodeIDs(ids []int32) (string, error) {
	ints := make([]int, len(ids))
	for i, id := range ids {
		if id < 0 {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		ints[i] = int(id)
	}
	return c.proc.Decode(ints), nil
}

// SentencePieceTokenizer adapts a fixed-vocabulary SentencePiece model to
// the Tokenizer interface. The engine exposes only raw encode/decode, so
// the richer operations are emulated on top of those two calls and chat
// templating is refused outright.
//
// Engine failures inside Encode, Decode, and the operations derived from
// them are absorbed into empty results. Callers that need to distinguish an
// empty input from a failed backend should reach for a configurable
// tokenizer, which reports its failures.
type SentencePieceTokenizer struct {
	codec codec
}

// NewSentencePiece loads a SentencePiece model file from disk.
func NewSentencePiece(path string) (*SentencePieceTokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("opening sentencepiece model: %w", err)
	}
	return newSentencePiece(&spCodec{proc: proc}), nil
}

func newSentencePiece(c codec) *SentencePieceTokenizer {
	return &SentencePieceTokenizer{codec: c}
}

func (t *SentencePieceTokenizer) Kind() Kind { return KindSentencePiece }

func (t *SentencePieceTokenizer) Encode(text string) ([]int32, error) {
	ids, err := t.codec.EncodeIDs(text)
	if err != nil {
		return []int32{}, nil
	}
	return ids, nil
}

func (t *SentencePieceTokenizer) Decode(ids []int32) (string, error) {
	text, err := t.codec.DecodeIDs(ids)
	if err != nil {
		return "", nil
	}
	return text, nil
}

// Tokenize decodes each encoded id on its own, one engine call per token.
// Fine for inspection, too slow for hot loops.
func (t *SentencePieceTokenizer) Tokenize(text string) ([]string, error) {
	ids, err := t.codec.EncodeIDs(text)
	if err != nil {
		return []string{}, nil
	}
	pieces := make([]string, len(ids))
	for i, id := range ids {
		piece, err := t.codec.DecodeIDs([]int32{id})
		if err != nil {
			piece = ""
		}
		pieces[i] = piece
	}
	return pieces, nil
}

// TokenToID encodes the token and keeps the first id. ok is false when the
// engine produced nothing for it.
func (t *SentencePieceTokenizer) TokenToID(token string) (int32, bool) {
	ids, err := t.codec.EncodeIDs(token)
	if err != nil || len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// IDToToken decodes a single id. Control ids legitimately decode to empty
// text, so ok is false only on engine failure.
func (t *SentencePieceTokenizer) IDToToken(id int32) (string, bool) {
	piece, err := t.codec.DecodeIDs([]int32{id})
	if err != nil {
		return "", false
	}
	return piece, true
}

func (t *SentencePieceTokenizer) TokensToIDs(tokens []string) []*int32 {
	out := make([]*int32, len(tokens))
	for i, tok := range tokens {
		if id, ok := t.TokenToID(tok); ok {
			v := id
			out[i] = &v
		}
	}
	return out
}

func (t *SentencePieceTokenizer) IDsToTokens(ids []*int32) []*string {
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

// ApplyChatTemplate always fails: a bare SentencePiece model carries no
// chat template. This holds for empty message lists too.
func (t *SentencePieceTokenizer) ApplyChatTemplate(messages []Message, opts TemplateOptions) ([]int32, error) {
	return nil, newChatTemplateError("sentencepiece models define no chat template")
}

func (t *SentencePieceTokenizer) SupportsChatTemplate() bool { return false }

func (t *SentencePieceTokenizer) SpecialTokens() SpecialTokens {
	return sentencePieceSpecials
}
