package hub

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samcharles93/loom/internal/tokenizer"
)

// CachedModel describes one model directory under the cache root.
type CachedModel struct {
	ID   string
	Dir  string
	Kind tokenizer.Kind
}

// CachedModels lists cached models that carry tokenizer artifacts, sorted
// by identifier. Directories with neither a sentencepiece model nor a
// tokenizer document are skipped.
func (h *Hub) CachedModels() ([]CachedModel, error) {
	ents, err := os.ReadDir(h.cacheDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	models := make([]CachedModel, 0, len(ents))
	for _, e := range ents {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), modelDirPrefix) {
			continue
		}
		dir := filepath.Join(h.cacheDir, e.Name())
		kind, ok := detectKind(dir)
		if !ok {
			continue
		}
		id := strings.TrimPrefix(e.Name(), modelDirPrefix)
		models = append(models, CachedModel{
			ID:   strings.ReplaceAll(id, "--", "/"),
			Dir:  dir,
			Kind: kind,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func detectKind(dir string) (tokenizer.Kind, bool) {
	if _, err := os.Stat(filepath.Join(dir, "tokenizer.model")); err == nil {
		return tokenizer.KindSentencePiece, true
	}
	if _, err := os.Stat(filepath.Join(dir, tokenizerDataFile)); err == nil {
		return tokenizer.KindHF, true
	}
	return "", false
}
