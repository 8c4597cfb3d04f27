package api

import (
	"context"
	"strings"
	"sync"

	"github.com/samcharles93/loom/internal/tokenizer"
)

// TokenizerProvider hands a ready tokenizer to fn. Implementations decide
// how the model string maps to a handle and whether handles are reused.
type TokenizerProvider interface {
	WithTokenizer(ctx context.Context, model string, fn func(tok tokenizer.Tokenizer) error) error
}

type ProviderConfig struct {
	// DefaultModel is used when a request names no model.
	DefaultModel string
	Fetcher      tokenizer.Fetcher
}

// selectTokenizer is swappable in tests.
var selectTokenizer = tokenizer.Select

// CachedTokenizerProvider resolves each model reference once and reuses the
// handle. Handles are not safe for concurrent use (the configurable backend
// keeps a merge cache), so calls against the same handle serialize on a
// per-entry lock.
type CachedTokenizerProvider struct {
	cfg   ProviderConfig
	mu    sync.Mutex
	cache map[string]*tokenizerEntry
}

type tokenizerEntry struct {
	tok tokenizer.Tokenizer
	mu  sync.Mutex
}

func NewCachedTokenizerProvider(cfg ProviderConfig) *CachedTokenizerProvider {
	return &CachedTokenizerProvider{
		cfg:   cfg,
		cache: make(map[string]*tokenizerEntry),
	}
}

func (p *CachedTokenizerProvider) WithTokenizer(ctx context.Context, model string, fn func(tok tokenizer.Tokenizer) error) error {
	model = strings.TrimSpace(model)
	if model == "" {
		model = strings.TrimSpace(p.cfg.DefaultModel)
	}
	if model == "" {
		return newInvalidRequest("model is required")
	}
	ref := tokenizer.ParseReference(model)

	entry, err := p.getOrLoad(ctx, ref)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(entry.tok)
}

func (p *CachedTokenizerProvider) getOrLoad(ctx context.Context, ref tokenizer.ModelReference) (*tokenizerEntry, error) {
	key := ref.String()
	p.mu.Lock()
	entry, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return entry, nil
	}

	tok, err := selectTokenizer(ctx, ref, p.cfg.Fetcher)
	if err != nil {
		return nil, err
	}
	newEntry := &tokenizerEntry{tok: tok}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.cache[key]; ok {
		return existing, nil
	}
	p.cache[key] = newEntry
	return newEntry, nil
}
