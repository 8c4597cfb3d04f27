package tokenizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// strictFetcher fails the test if the selector touches an accessor it
// should not need.
type strictFetcher struct {
	t *testing.T
	fakeFetcher
	allowAccessors bool
}

func (f *strictFetcher) RemoteAccessor(ctx context.Context, id string) (ConfigAccessor, error) {
	if !f.allowAccessors {
		f.t.Fatalf("unexpected RemoteAccessor(%q)", id)
	}
	return f.fakeFetcher.RemoteAccessor(ctx, id)
}

func (f *strictFetcher) LocalAccessor(dir string) ConfigAccessor {
	if !f.allowAccessors {
		f.t.Fatalf("unexpected LocalAccessor(%q)", dir)
	}
	return f.fakeFetcher.LocalAccessor(dir)
}

func writeMarker(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, markerFile), []byte("spm"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSelectMarkerPicksSentencePiece(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, dir)

	orig := loadSentencePiece
	loadSentencePiece = func(path string) (*SentencePieceTokenizer, error) {
		if path != filepath.Join(dir, markerFile) {
			t.Fatalf("unexpected model path: %s", path)
		}
		return newSentencePiece(newFakeCodec("hi")), nil
	}
	defer func() { loadSentencePiece = orig }()

	tok, err := Select(context.Background(), Local(dir), &strictFetcher{t: t})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tok.Kind() != KindSentencePiece {
		t.Fatalf("expected sentencepiece handle, got %s", tok.Kind())
	}
}

func TestSelectMarkerLoadFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, dir)

	loadErr := errors.New("corrupt model")
	orig := loadSentencePiece
	loadSentencePiece = func(path string) (*SentencePieceTokenizer, error) {
		return nil, loadErr
	}
	defer func() { loadSentencePiece = orig }()

	_, err := Select(context.Background(), Local(dir), &strictFetcher{t: t})
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected load failure to propagate, got %v", err)
	}
}

func TestSelectWithoutMarkerBuildsConfigurable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := &strictFetcher{t: t, allowAccessors: true}
	f.localData = []byte(`{"model":{"type":"BPE","vocab":{"a":0},"merges":[]}}`)

	tok, err := Select(context.Background(), Local(dir), f)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tok.Kind() != KindHF {
		t.Fatalf("expected configurable handle, got %s", tok.Kind())
	}
	if len(f.remoteCalls) != 0 {
		t.Fatalf("local reference must never fetch remotely: %v", f.remoteCalls)
	}
}

func TestSelectRemoteMapsDirectoryThroughFetcher(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	modelDir := filepath.Join(cache, "org/name")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatal(err)
	}
	f := &strictFetcher{t: t, allowAccessors: true}
	f.dir = cache
	f.remoteAcc = &fakeAccessor{
		config: []byte(`{}`),
		data:   []byte(`{"model":{"type":"BPE","vocab":{"a":0},"merges":[]}}`),
	}

	tok, err := Select(context.Background(), Remote("org/name"), f)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tok.Kind() != KindHF {
		t.Fatalf("expected configurable handle, got %s", tok.Kind())
	}
	if len(f.remoteCalls) != 1 {
		t.Fatalf("expected one remote accessor build: %v", f.remoteCalls)
	}
}
