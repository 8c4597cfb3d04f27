package hub

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// remoteAccessor serves the configuration resolved at construction and
// fetches the data document on demand. It is local to one resolution call
// and holds no shared state beyond the hub's cache directory.
type remoteAccessor struct {
	hub *Hub
	id  string
	dir string

	// config was resolved eagerly when the accessor was built; nil means
	// the repository has no such document.
	config []byte
}

func (a *remoteAccessor) TokenizerConfig(ctx context.Context) ([]byte, error) {
	return a.config, nil
}

func (a *remoteAccessor) TokenizerData(ctx context.Context) ([]byte, error) {
	return a.hub.fetchFile(ctx, a.id, a.dir, tokenizerDataFile)
}

type localAccessor struct {
	dir string
}

// TokenizerConfig reports an absent file as an absent document rather than
// an error, matching the remote accessor's contract.
func (a *localAccessor) TokenizerConfig(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(a.dir, tokenizerConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer configuration: %w", err)
	}
	return raw, nil
}

func (a *localAccessor) TokenizerData(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(a.dir, tokenizerDataFile))
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer data: %w", err)
	}
	return raw, nil
}
