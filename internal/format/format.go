// Package format classifies object keys by file extension.
package format

import (
	"path"
	"sort"
	"strings"
)

// Set is a set of lowercase file extensions including the leading dot.
type Set map[string]struct{}

func newSet(exts ...string) Set {
	s := make(Set, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// SupportedFormats lists every extension the gallery can serve as a photo.
var SupportedFormats = newSet(
	".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp",
	".tiff", ".tif", ".avif",
	".heic", ".heif", ".hif",
)

// HeicFormats is the subset of SupportedFormats that needs HEIC/HEIF decoding.
var HeicFormats = newSet(".heic", ".heif", ".hif")

// Contains reports whether ext (any case, with or without leading dot) is in the set.
func (s Set) Contains(ext string) bool {
	if ext == "" {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	_, ok := s[strings.ToLower(ext)]
	return ok
}

// Extensions returns the set's members in sorted order.
func (s Set) Extensions() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Ext returns the lowercase extension of a slash-separated key, or "" if it has none.
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

// IsSupportedImage reports whether name has a supported image extension.
// Comparison is case-insensitive.
func IsSupportedImage(name string) bool {
	return SupportedFormats.Contains(Ext(name))
}

// IsHeicFormat reports whether name has a HEIC/HEIF extension.
func IsHeicFormat(name string) bool {
	return HeicFormats.Contains(Ext(name))
}

// Name returns the extension without its dot, e.g. "jpg" for "a/b.JPG".
func Name(name string) string {
	return strings.TrimPrefix(Ext(name), ".")
}
