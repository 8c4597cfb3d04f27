package tokenizer

import (
	"context"
	"fmt"
)

// Fetcher supplies directory mapping and configuration access for model
// references. internal/hub carries the production implementation; tests use
// fakes.
type Fetcher interface {
	// ModelDir maps a remote identifier to the local directory where its
	// artifacts are (or would be) cached.
	ModelDir(id string) (string, error)

	// RemoteAccessor builds an accessor for a remote identifier. It eagerly
	// resolves the tokenizer configuration, so construction may fetch over
	// the network and fail with transport errors.
	RemoteAccessor(ctx context.Context, id string) (ConfigAccessor, error)

	// LocalAccessor builds an accessor that reads from dir and nothing
	// else.
	LocalAccessor(dir string) ConfigAccessor
}

// ConfigAccessor reads the two documents a configurable tokenizer is built
// from.
type ConfigAccessor interface {
	// TokenizerConfig returns the behavior document
	// (tokenizer_config.json), or (nil, nil) when the source has no such
	// document.
	TokenizerConfig(ctx context.Context) ([]byte, error)

	// TokenizerData returns the vocabulary document (tokenizer.json).
	TokenizerData(ctx context.Context) ([]byte, error)
}

// resolveConfig obtains the configuration and data documents for a
// configurable tokenizer. Remote references resolve through a
// network-backed accessor; when building that accessor fails with the
// no-connectivity signal, resolution falls back once to the local cache
// directory. Every other failure propagates unchanged, so callers can match
// the original error.
func resolveConfig(ctx context.Context, ref ModelReference, fetcher Fetcher) ([]byte, []byte, error) {
	acc, err := buildAccessor(ctx, ref, fetcher)
	if err != nil {
		return nil, nil, err
	}

	config, err := acc.TokenizerConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading tokenizer configuration for %s: %w", ref, err)
	}
	if config == nil {
		return nil, nil, fmt.Errorf("%s: %w", ref, ErrMissingConfig)
	}

	data, err := acc.TokenizerData(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading tokenizer data for %s: %w", ref, err)
	}
	return config, data, nil
}

func buildAccessor(ctx context.Context, ref ModelReference, fetcher Fetcher) (ConfigAccessor, error) {
	if ref.IsLocal() {
		return fetcher.LocalAccessor(ref.Dir()), nil
	}

	id := ref.resolveID()
	acc, err := fetcher.RemoteAccessor(ctx, id)
	if err == nil {
		return acc, nil
	}
	if classifyFetchErr(err) != fetchNoConnectivity {
		return nil, err
	}

	// Offline: serve whatever the cache already holds.
	dir, dirErr := fetcher.ModelDir(id)
	if dirErr != nil {
		return nil, fmt.Errorf("mapping %s to a cache directory: %w", id, dirErr)
	}
	return fetcher.LocalAccessor(dir), nil
}
