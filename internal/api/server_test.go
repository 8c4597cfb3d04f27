package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loom/internal/hub"
	"github.com/samcharles93/loom/internal/tokenizer"
)

const testTokenizerJSON = `{
	"model":{
		"type":"BPE",
		"ignore_merges":true,
		"vocab":{"hi":0,"user":1,"assistant":2,"Ċ":3},
		"merges":[],
		"unk_token":"<unk>"
	},
	"added_tokens":[
		{"id":4,"content":"<|im_start|>","special":true},
		{"id":5,"content":"<|im_end|>","special":true},
		{"id":6,"content":"<unk>","special":true}
	]
}`

const testTokenizerConfig = `{
	"chat_template":"{% for m in messages %}<|im_start|>{{ m.role }}\n{{ m.content }}<|im_end|>\n{% endfor %}"
}`

type fixedProvider struct {
	tok tokenizer.Tokenizer
}

func (p fixedProvider) WithTokenizer(ctx context.Context, model string, fn func(tok tokenizer.Tokenizer) error) error {
	if strings.TrimSpace(model) == "" {
		return newInvalidRequest("model is required")
	}
	return fn(p.tok)
}

type fixedLister struct {
	models []hub.CachedModel
	err    error
}

func (l fixedLister) CachedModels() ([]hub.CachedModel, error) {
	return l.models, l.err
}

func newTestEcho(t *testing.T, config string) *echo.Echo {
	t.Helper()
	tok, err := tokenizer.LoadHFTokenizerBytes([]byte(testTokenizerJSON), []byte(config))
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}
	server := NewServer(fixedProvider{tok: tok}, fixedLister{
		models: []hub.CachedModel{
			{ID: "org/hf", Kind: tokenizer.KindHF},
			{ID: "org/sp", Kind: tokenizer.KindSentencePiece},
		},
	})
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenizeEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"model":"org/hf","text":"hi","with_pieces":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp TokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Object != "tokenization" || !strings.HasPrefix(resp.ID, "tok_") {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if len(resp.Tokens) != 1 || resp.Tokens[0] != 0 || resp.Count != 1 {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	if len(resp.Pieces) != 1 || resp.Pieces[0] != "hi" {
		t.Fatalf("unexpected pieces: %+v", resp)
	}
}

func TestTokenizeRequiresModel(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":"hi"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "model is required") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDetokenizeEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodPost, "/v1/detokenize", `{"model":"org/hf","tokens":[0]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp DetokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "hi" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestChatTemplateEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodPost, "/v1/chat/template",
		`{"model":"org/hf","messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp ChatTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count == 0 || len(resp.Tokens) != resp.Count {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
}

func TestChatTemplateUnsupported(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, `{}`)
	rec := doJSON(t, e, http.MethodPost, "/v1/chat/template",
		`{"model":"org/hf","messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "chat_template_unsupported") {
		t.Fatalf("expected unsupported code in body: %s", rec.Body.String())
	}
}

func TestTokenizerInfoEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodGet, "/v1/tokenizer?model=org/hf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp TokenizerInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "hf" || !resp.SupportsChatTemplate {
		t.Fatalf("unexpected info: %+v", resp)
	}
	if resp.UNK == nil || resp.UNK.ID != 6 {
		t.Fatalf("unexpected unk token: %+v", resp.UNK)
	}
}

func TestListModelsEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodGet, "/v1/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp ModelListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Object != "list" || len(resp.Data) != 2 {
		t.Fatalf("unexpected list: %+v", resp)
	}
	if resp.Data[0].ID != "org/hf" || resp.Data[0].Kind != "hf" {
		t.Fatalf("unexpected first model: %+v", resp.Data[0])
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, testTokenizerConfig)
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
