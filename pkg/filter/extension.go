// File: pkg/filter/extension.go
package filter

import (
	"path"
	"sort"
	"strings"
)

// NormalizeExtension lowercases an extension and gives it a leading dot.
// "js", ".js" and ".JS" all normalize to ".js"; blank input yields "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ExtensionSet is the allow-set of normalized extensions.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from raw extension strings.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	set.Add(exts...)
	return set
}

// Add normalizes and inserts extensions, ignoring blanks.
func (s ExtensionSet) Add(exts ...string) {
	for _, ext := range exts {
		if n := NormalizeExtension(ext); n != "" {
			s[n] = struct{}{}
		}
	}
}

// Has reports membership of an already normalized key.
func (s ExtensionSet) Has(ext string) bool {
	_, ok := s[ext]
	return ok
}

// Sorted returns the members in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsExtensionAllowed decides inclusion of filename by extension.
// An empty set rejects every file. A file without an extension is allowed only when its whole
// lowercased name is itself in the set (e.g. a "Dockerfile" entry).
func IsExtensionAllowed(filename string, allowed ExtensionSet) bool {
	if len(allowed) == 0 {
		return false
	}

	name := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	ext := path.Ext(name)
	if ext != "" && ext != name {
		return allowed.Has(ext)
	}

	// Extension-less names, and dotfiles whose only dot is the leading one.
	return allowed.Has(NormalizeExtension(name)) || allowed.Has(name)
}
