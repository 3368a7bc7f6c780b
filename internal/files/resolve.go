package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// safeRune reports whether r may appear in a stored filename.
// Allowed set: alphanumerics, dot, dash, underscore.
func safeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_':
		return true
	}
	return false
}

// Sanitize collapses a user-supplied filename to the safe character
// set. Path separators are stripped by taking the base name first, so
// the result can never reference another directory. A name that
// sanitizes to nothing (or to a directory reference) becomes "file".
func Sanitize(name string) string {
	// normalize both separator styles before taking the base
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case safeRune(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "file"
	}

	return out
}

// ResolveUniqueName sanitizes the requested name and returns it if no
// file with that name exists in dir. Otherwise it appends an
// incrementing numeric suffix before the extension (base_1.ext,
// base_2.ext, ...) until an unused name is found. Pure name
// computation: nothing is created on disk.
func ResolveUniqueName(dir, requested string) (string, error) {
	name := Sanitize(requested)

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
}
