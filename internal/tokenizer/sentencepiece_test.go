package tokenizer

import (
	"errors"
	"strings"
	"testing"
)

// fakeCodec maps whole words to ids, one id per space-separated word.
type fakeCodec struct {
	vocab   map[string]int32
	reverse map[int32]string
	fail    bool
}

func newFakeCodec(words ...string) *fakeCodec {
	c := &fakeCodec{
		vocab:   make(map[string]int32),
		reverse: make(map[int32]string),
	}
	for i, w := range words {
		id := int32(i + 3)
		c.vocab[w] = id
		c.reverse[id] = w
	}
	return c
}

func (c *fakeCodec) EncodeIDs(text string) ([]int32, error) {
	if c.fail {
		return nil, errors.New("codec failure")
	}
	var ids []int32
	for _, w := range strings.Fields(text) {
		id, ok := c.vocab[w]
		if !ok {
			return nil, errors.New("unknown word")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *fakeCodec) DecodeIDs(ids []int32) (string, error) {
	if c.fail {
		return "", errors.New("codec failure")
	}
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		w, ok := c.reverse[id]
		if !ok {
			return "", errors.New("unknown id")
		}
		words = append(words, w)
	}
	return strings.Join(words, " "), nil
}

func TestSentencePieceRoundTrip(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec("hello", "world"))
	ids, err := tok.Encode("hello world")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	text, err := tok.Decode(ids)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("round trip mismatch: %q", text)
	}
}

func TestSentencePieceAbsorbsBackendFailures(t *testing.T) {
	t.Parallel()

	c := newFakeCodec("hello")
	c.fail = true
	tok := newSentencePiece(c)

	ids, err := tok.Encode("hello")
	if err != nil {
		t.Fatalf("encode must absorb failures, got %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty ids, got %v", ids)
	}
	text, err := tok.Decode([]int32{3})
	if err != nil {
		t.Fatalf("decode must absorb failures, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
	pieces, err := tok.Tokenize("hello")
	if err != nil {
		t.Fatalf("tokenize must absorb failures, got %v", err)
	}
	if len(pieces) != 0 {
		t.Fatalf("expected no pieces, got %v", pieces)
	}
}

func TestSentencePieceTokenize(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec("a", "b"))
	pieces, err := tok.Tokenize("a b")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(pieces) != 2 || pieces[0] != "a" || pieces[1] != "b" {
		t.Fatalf("unexpected pieces: %v", pieces)
	}
}

func TestSentencePieceConversions(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec("a", "b"))

	id, ok := tok.TokenToID("a")
	if !ok || id != 3 {
		t.Fatalf("TokenToID: got %d ok=%v", id, ok)
	}
	if _, ok := tok.TokenToID(""); ok {
		t.Fatalf("expected no id for empty token")
	}
	piece, ok := tok.IDToToken(4)
	if !ok || piece != "b" {
		t.Fatalf("IDToToken: got %q ok=%v", piece, ok)
	}
	if _, ok := tok.IDToToken(99); ok {
		t.Fatalf("expected failure for unknown id")
	}
}

func TestSentencePieceBatchConversionsPreserveShape(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec("a", "b"))

	ids := tok.TokensToIDs([]string{"a", "nope", "b"})
	if len(ids) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ids))
	}
	if ids[0] == nil || *ids[0] != 3 {
		t.Fatalf("unexpected first id: %v", ids[0])
	}
	if ids[1] != nil {
		t.Fatalf("expected nil for unencodable token")
	}
	if ids[2] == nil || *ids[2] != 4 {
		t.Fatalf("unexpected third id: %v", ids[2])
	}

	tokens := tok.IDsToTokens(ids)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 entries back, got %d", len(tokens))
	}
	if tokens[0] == nil || *tokens[0] != "a" {
		t.Fatalf("unexpected first token: %v", tokens[0])
	}
	if tokens[1] != nil {
		t.Fatalf("nil id must stay nil")
	}
	if tokens[2] == nil || *tokens[2] != "b" {
		t.Fatalf("unexpected third token: %v", tokens[2])
	}

	if out := tok.TokensToIDs(nil); len(out) != 0 {
		t.Fatalf("empty input must give empty output, got %v", out)
	}
	if out := tok.IDsToTokens([]*int32{}); len(out) != 0 {
		t.Fatalf("empty input must give empty output, got %v", out)
	}
}

func TestSentencePieceChatTemplateAlwaysUnsupported(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec("a"))
	if tok.SupportsChatTemplate() {
		t.Fatalf("sentencepiece must not claim chat template support")
	}

	for _, msgs := range [][]Message{
		nil,
		{},
		{{Role: "user", Content: "hi"}},
	} {
		_, err := tok.ApplyChatTemplate(msgs, TemplateOptions{AddGenerationPrompt: true})
		if !errors.Is(err, ErrChatTemplateUnsupported) {
			t.Fatalf("expected ErrChatTemplateUnsupported for %v, got %v", msgs, err)
		}
	}
}

func TestSentencePieceSpecialTokens(t *testing.T) {
	t.Parallel()

	tok := newSentencePiece(newFakeCodec())
	sp := tok.SpecialTokens()
	if sp.BOS.Text != "<s>" || sp.BOS.ID != 1 {
		t.Fatalf("unexpected BOS: %+v", sp.BOS)
	}
	if sp.EOS.Text != "</s>" || sp.EOS.ID != 2 {
		t.Fatalf("unexpected EOS: %+v", sp.EOS)
	}
	if sp.UNK.Text != "<unk>" || sp.UNK.ID != 0 {
		t.Fatalf("unexpected UNK: %+v", sp.UNK)
	}
	if tok.Kind() != KindSentencePiece {
		t.Fatalf("unexpected kind: %s", tok.Kind())
	}
}
