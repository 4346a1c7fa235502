package util

import (
	"errors"
	"mime"
	"path"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips directories and control characters from a client-supplied name.
func SanitizeFileName(name string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// ContentDisposition builds an inline or attachment header value for name,
// falling back to fallback when name cannot be sanitized.
func ContentDisposition(disposition, name, fallback string) string {
	clean, err := SanitizeFileName(name)
	if err != nil {
		clean = fallback
	}
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": clean}); v != "" {
		return v
	}
	return disposition
}

// TextFileName swaps the extension of name for .txt.
func TextFileName(name string) string {
	clean, err := SanitizeFileName(name)
	if err != nil {
		return "document.txt"
	}
	if ext := path.Ext(clean); ext != "" && ext != clean {
		clean = strings.TrimSuffix(clean, ext)
	}
	return clean + ".txt"
}
