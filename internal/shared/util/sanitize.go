package util

import (
	"errors"
	"path"
	"strings"
)

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces an uploaded file name to a safe base name made of
// ASCII letters, digits, dots, dashes and underscores.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return "", errInvalidFileName
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", errInvalidFileName
	}
	return out, nil
}
