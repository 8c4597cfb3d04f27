package tokenizer

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// HFConfig is the behavior half of a configurable tokenizer: which control
// tokens exist, whether encode adds them, and the chat template source. It
// is derived from tokenizer.json plus tokenizer_config.json and fixed for
// the life of the tokenizer.
type HFConfig struct {
	AddBOS bool
	AddEOS bool

	BOSToken string
	EOSToken string
	UNKToken string

	// Token ids are -1 when the vocabulary defines no such token.
	BOSTokenID int32
	EOSTokenID int32
	UNKTokenID int32

	ChatTemplate string
}

type hfTokenizerJSON struct {
	Model struct {
		Type         string         `json:"type"`
		Vocab        map[string]int `json:"vocab"`
		Merges       []any          `json:"merges"`
		IgnoreMerges bool           `json:"ignore_merges"`
		UnkToken     string         `json:"unk_token"`
	} `json:"model"`
	PreTokenizer struct {
		Type          string `json:"type"`
		Pretokenizers []struct {
			Type    string `json:"type"`
			Pattern struct {
				Regex string `json:"Regex"`
			} `json:"pattern"`
		} `json:"pretokenizers"`
	} `json:"pre_tokenizer"`
	PostProcessor struct {
		Type       string `json:"type"`
		Processors []struct {
			Type          string `json:"type"`
			SpecialTokens map[string]struct {
				IDs []int `json:"ids"`
			} `json:"special_tokens"`
		} `json:"processors"`
	} `json:"post_processor"`
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

type hfTokenizerConfig struct {
	AddBOS       bool   `json:"add_bos_token"`
	AddEOS       bool   `json:"add_eos_token"`
	BOS          string `json:"bos_token"`
	EOS          string `json:"eos_token"`
	UNK          string `json:"unk_token"`
	ChatTemplate string `json:"chat_template"`
}

// ParseHFTokenizerConfigBytes derives the behavior config from the two raw
// documents without building a full tokenizer. Select uses the full loader;
// this entry point serves inspection tooling.
func ParseHFTokenizerConfigBytes(tokJSON, tokConfig []byte) (HFConfig, error) {
	tj, err := parseHFDocument(tokJSON)
	if err != nil {
		return HFConfig{}, err
	}
	encoder := make(map[string]int32, len(tj.Model.Vocab)+len(tj.AddedTokens))
	for tok, id := range tj.Model.Vocab {
		encoder[tok] = int32(id)
	}
	for _, at := range tj.AddedTokens {
		encoder[at.Content] = int32(at.ID)
	}
	return deriveHFConfig(tj, tokConfig, encoder), nil
}

func parseHFDocument(tokJSON []byte) (*hfTokenizerJSON, error) {
	var tj hfTokenizerJSON
	if err := json.Unmarshal(tokJSON, &tj); err != nil {
		return nil, fmt.Errorf("parsing tokenizer data: %w", err)
	}
	if strings.ToUpper(tj.Model.Type) != "BPE" {
		return nil, fmt.Errorf("unsupported tokenizer model: %s", tj.Model.Type)
	}
	return &tj, nil
}

func deriveHFConfig(tj *hfTokenizerJSON, tokConfig []byte, encoder map[string]int32) HFConfig {
	var raw hfTokenizerConfig
	if len(tokConfig) > 0 {
		_ = json.Unmarshal(tokConfig, &raw)
	}

	cfg := HFConfig{
		AddBOS:       raw.AddBOS,
		AddEOS:       raw.AddEOS,
		BOSToken:     raw.BOS,
		EOSToken:     raw.EOS,
		UNKToken:     raw.UNK,
		BOSTokenID:   -1,
		EOSTokenID:   -1,
		UNKTokenID:   -1,
		ChatTemplate: raw.ChatTemplate,
	}
	if cfg.UNKToken == "" {
		cfg.UNKToken = tj.Model.UnkToken
	}
	if id, ok := encoder[cfg.BOSToken]; ok && cfg.BOSToken != "" {
		cfg.BOSTokenID = id
	}
	if id, ok := encoder[cfg.EOSToken]; ok && cfg.EOSToken != "" {
		cfg.EOSTokenID = id
	}
	if id, ok := encoder[cfg.UNKToken]; ok && cfg.UNKToken != "" {
		cfg.UNKTokenID = id
	}

	// A TemplateProcessing post-processor that injects a token at position
	// zero overrides the declared BOS handling.
	for _, proc := range tj.PostProcessor.Processors {
		if proc.Type != "TemplateProcessing" {
			continue
		}
		for _, spec := range proc.SpecialTokens {
			if len(spec.IDs) > 0 {
				cfg.BOSTokenID = int32(spec.IDs[0])
				cfg.AddBOS = true
				break
			}
		}
	}
	return cfg
}
