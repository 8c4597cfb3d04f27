package api

import "github.com/samcharles93/loom/internal/tokenizer"

type TokenizeRequest struct {
	Model      string `json:"model,omitempty"`
	Text       string `json:"text"`
	WithPieces bool   `json:"with_pieces,omitempty"`
}

type TokenizeResponse struct {
	ID     string   `json:"id"`
	Object string   `json:"object"`
	Model  string   `json:"model"`
	Tokens []int32  `json:"tokens"`
	Pieces []string `json:"pieces,omitempty"`
	Count  int      `json:"count"`
}

type DetokenizeRequest struct {
	Model  string  `json:"model,omitempty"`
	Tokens []int32 `json:"tokens"`
}

type DetokenizeResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Model  string `json:"model"`
	Text   string `json:"text"`
}

type ChatTemplateRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	// AddGenerationPrompt defaults to true when omitted.
	AddGenerationPrompt *bool `json:"add_generation_prompt,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
	Name    string `json:"name,omitempty"`
}

type ChatTemplateResponse struct {
	ID     string  `json:"id"`
	Object string  `json:"object"`
	Model  string  `json:"model"`
	Tokens []int32 `json:"tokens"`
	Count  int     `json:"count"`
}

type SpecialTokenInfo struct {
	Text string `json:"text"`
	ID   int32  `json:"id"`
}

type TokenizerInfoResponse struct {
	Object               string            `json:"object"`
	Model                string            `json:"model"`
	Kind                 string            `json:"kind"`
	SupportsChatTemplate bool              `json:"supports_chat_template"`
	BOS                  *SpecialTokenInfo `json:"bos_token,omitempty"`
	EOS                  *SpecialTokenInfo `json:"eos_token,omitempty"`
	UNK                  *SpecialTokenInfo `json:"unk_token,omitempty"`
}

type ModelInfo struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type ModelListResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

func messagesFromDTO(msgs []ChatMessage) []tokenizer.Message {
	out := make([]tokenizer.Message, len(msgs))
	for i, m := range msgs {
		out[i] = tokenizer.Message{Role: m.Role, Content: m.Content, Name: m.Name}
	}
	return out
}

func specialTokenInfo(tok tokenizer.SpecialToken) *SpecialTokenInfo {
	if tok.Text == "" && tok.ID < 0 {
		return nil
	}
	return &SpecialTokenInfo{Text: tok.Text, ID: tok.ID}
}
