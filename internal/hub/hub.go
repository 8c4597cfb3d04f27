// Package hub fetches and caches tokenizer artifacts for remote model
// identifiers, and exposes the cached layout for local use. It is the
// production implementation of the tokenizer package's Fetcher interface.
package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samcharles93/loom/internal/logger"
	"github.com/samcharles93/loom/internal/tokenizer"
)

const (
	defaultBaseURL = "https://huggingface.co"

	envBaseURL     = "LOOM_HUB_BASE"
	envCacheDir    = "LOOM_CACHE_DIR"
	envToken       = "HF_TOKEN"
	envOffline     = "LOOM_OFFLINE"
	envHTTPTimeout = "LOOM_HTTP_TIMEOUT" // seconds

	tokenizerConfigFile = "tokenizer_config.json"
	tokenizerDataFile   = "tokenizer.json"

	// modelDirPrefix is the HF-style cache layout: one flattened
	// models--{org}--{name} directory per model.
	modelDirPrefix = "models--"
)

type Options struct {
	// BaseURL overrides the artifact host. Falls back to LOOM_HUB_BASE,
	// then the public hub.
	BaseURL string
	// CacheDir overrides where artifacts are cached. Falls back to
	// LOOM_CACHE_DIR, then the user cache directory.
	CacheDir string
	// Token is sent as a bearer credential on every fetch. Falls back to
	// HF_TOKEN.
	Token string
	// Offline forbids dialing: cached files serve, misses fail. Falls
	// back to LOOM_OFFLINE.
	Offline bool
	// Client overrides the HTTP client; the default is bounded by a
	// timeout so restricted networks fail instead of hanging.
	Client *http.Client
	Logger logger.Logger
}

type Hub struct {
	baseURL  string
	cacheDir string
	token    string
	offline  bool
	client   *http.Client
	log      logger.Logger
}

func New(opts Options) (*Hub, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = strings.TrimSpace(os.Getenv(envBaseURL))
	}
	if base == "" {
		base = defaultBaseURL
	}
	base = strings.TrimSuffix(base, "/")

	cacheDir := strings.TrimSpace(opts.CacheDir)
	if cacheDir == "" {
		cacheDir = strings.TrimSpace(os.Getenv(envCacheDir))
	}
	if cacheDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		cacheDir = filepath.Join(userCache, "loom")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	token := strings.TrimSpace(opts.Token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(envToken))
	}

	offline := opts.Offline
	if !offline {
		if v := strings.TrimSpace(os.Getenv(envOffline)); v != "" {
			b, err := strconv.ParseBool(v)
			offline = err != nil || b
		}
	}

	client := opts.Client
	if client == nil {
		timeout := 30 * time.Second
		if v := os.Getenv(envHTTPTimeout); v != "" {
			if s, err := strconv.Atoi(v); err == nil && s > 0 {
				timeout = time.Duration(s) * time.Second
			}
		}
		client = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Hub{
		baseURL:  base,
		cacheDir: cacheDir,
		token:    token,
		offline:  offline,
		client:   client,
		log:      log,
	}, nil
}

// CacheDir is the root under which all model artifacts live.
func (h *Hub) CacheDir() string { return h.cacheDir }

// ModelDir maps a model identifier to its cache directory. The identifier's
// path separator is flattened so "org/name" stays a single directory level.
func (h *Hub) ModelDir(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("hub: empty model id")
	}
	return filepath.Join(h.cacheDir, modelDirPrefix+strings.ReplaceAll(id, "/", "--")), nil
}

// RemoteAccessor builds an accessor for a remote identifier, eagerly
// ensuring the tokenizer configuration is cached. Transport failures
// surface from here; the caller decides whether they warrant a local
// fallback. A hub repository that simply lacks the config document is not
// an error - the accessor reports the document as absent instead.
func (h *Hub) RemoteAccessor(ctx context.Context, id string) (tokenizer.ConfigAccessor, error) {
	dir, err := h.ModelDir(id)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating model directory: %w", err)
	}

	config, err := h.fetchFile(ctx, id, dir, tokenizerConfigFile)
	if err != nil {
		if isNotFound(err) {
			config = nil
		} else {
			return nil, err
		}
	}
	return &remoteAccessor{hub: h, id: id, dir: dir, config: config}, nil
}

// LocalAccessor reads artifacts from dir and never touches the network.
func (h *Hub) LocalAccessor(dir string) tokenizer.ConfigAccessor {
	return &localAccessor{dir: dir}
}

// fetchFile returns one artifact's bytes, serving the cache when the file
// is already present and downloading on a miss. In offline mode a miss is
// a not-found failure instead of a dial.
func (h *Hub) fetchFile(ctx context.Context, id, dir, name string) ([]byte, error) {
	dest := filepath.Join(dir, name)
	if data, err := os.ReadFile(dest); err == nil {
		return data, nil
	}
	if h.offline {
		return nil, fmt.Errorf("%s: not cached and hub is offline: %w", dest, ErrNotFound)
	}
	return h.download(ctx, id, dest, name)
}

// download fetches one artifact and writes it into the cache via a
// temporary file and rename, so an interrupted write never leaves a
// truncated artifact for later local reads. Transport errors are wrapped,
// not replaced, so the underlying syscall errno stays matchable with
// errors.Is.
func (h *Hub) download(ctx context.Context, id, dest, name string) ([]byte, error) {
	url := h.baseURL + "/" + id + "/resolve/main/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if err := writeFileAtomic(dest, data); err != nil {
		return nil, fmt.Errorf("caching %s: %w", dest, err)
	}
	h.log.Debug("fetched artifact", "model", id, "file", name, "bytes", len(data))
	return data, nil
}

func writeFileAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
