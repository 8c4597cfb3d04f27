package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
)

// ModelReference names the model whose tokenizer should be loaded: either a
// remote identifier such as "org/name", or a local directory that already
// holds the artifacts. References are immutable and comparable, so they can
// serve as map keys.
type ModelReference struct {
	id          string
	tokenizerID string
	dir         string
}

// Remote references a model by its hub identifier.
func Remote(id string) ModelReference {
	return ModelReference{id: id}
}

// RemoteWithTokenizer references a model whose tokenizer artifacts live
// under a different identifier. The override wins wherever artifacts are
// fetched or mapped to a directory.
func RemoteWithTokenizer(id, tokenizerID string) ModelReference {
	return ModelReference{id: id, tokenizerID: tokenizerID}
}

// Local references a directory on disk.
func Local(dir string) ModelReference {
	return ModelReference{dir: dir}
}

func (r ModelReference) IsLocal() bool       { return r.dir != "" }
func (r ModelReference) ID() string          { return r.id }
func (r ModelReference) TokenizerID() string { return r.tokenizerID }
func (r ModelReference) Dir() string         { return r.dir }

func (r ModelReference) String() string {
	if r.dir != "" {
		return r.dir
	}
	if r.tokenizerID != "" {
		return r.id + "@" + r.tokenizerID
	}
	return r.id
}

// ParseReference interprets a user-supplied model string. Strings that name
// an existing directory, or that are unambiguously filesystem paths, become
// local references; everything else is a hub identifier, optionally with a
// tokenizer override after "@".
func ParseReference(s string) ModelReference {
	s = strings.TrimSpace(s)
	if looksLikeDir(s) {
		return Local(filepath.Clean(s))
	}
	if id, tokID, ok := strings.Cut(s, "@"); ok && tokID != "" {
		return RemoteWithTokenizer(id, tokID)
	}
	return Remote(s)
}

// looksLikeDir errs toward remote: "org/name" is a valid relative path, so
// only explicit path prefixes or an existing directory count as local.
func looksLikeDir(s string) bool {
	if s == "" {
		return false
	}
	if s == "." || s == ".." ||
		strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") {
		return true
	}
	st, err := os.Stat(s)
	return err == nil && st.IsDir()
}

// resolveID names the identifier whose artifacts are fetched: the tokenizer
// override when present, the model id otherwise.
func (r ModelReference) resolveID() string {
	if r.tokenizerID != "" {
		return r.tokenizerID
	}
	return r.id
}
