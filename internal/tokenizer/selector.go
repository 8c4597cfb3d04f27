package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// markerFile is the artifact whose presence selects the fixed-vocabulary
// backend.
const markerFile = "tokenizer.model"

// loadSentencePiece is swappable in tests that have no trained model file.
var loadSentencePiece = NewSentencePiece

// Select resolves ref to a directory, probes it for a SentencePiece model
// file, and constructs the matching tokenizer. A directory carrying
// tokenizer.model loads the fixed-vocabulary backend from that file alone;
// any other directory loads the configurable backend from its two
// configuration documents. The decision is made once per call and load
// failures are not retried.
func Select(ctx context.Context, ref ModelReference, fetcher Fetcher) (Tokenizer, error) {
	dir, err := resolveDir(ref, fetcher)
	if err != nil {
		return nil, err
	}

	marker := filepath.Join(dir, markerFile)
	switch _, err := os.Stat(marker); {
	case err == nil:
		tok, err := loadSentencePiece(marker)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", marker, err)
		}
		return tok, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("probing %s: %w", marker, err)
	}

	config, data, err := resolveConfig(ctx, ref, fetcher)
	if err != nil {
		return nil, err
	}
	tok, err := LoadHFTokenizerBytes(data, config)
	if err != nil {
		return nil, fmt.Errorf("loading configurable tokenizer for %s: %w", ref, err)
	}
	return tok, nil
}

func resolveDir(ref ModelReference, fetcher Fetcher) (string, error) {
	if ref.IsLocal() {
		return ref.Dir(), nil
	}
	dir, err := fetcher.ModelDir(ref.resolveID())
	if err != nil {
		return "", fmt.Errorf("resolving model directory for %s: %w", ref, err)
	}
	return dir, nil
}
