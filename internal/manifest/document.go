// Package manifest defines the versioned photo manifest document and the
// migrations that bring older documents up to the current schema.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned when stored manifest bytes are not a valid document.
var ErrMalformed = errors.New("malformed manifest")

// Entry is a single photo in the manifest. Entries are kept as generic maps so
// metadata written by other tools (camera, lens, rating, tags, ...) survives a
// decode/encode cycle untouched.
type Entry map[string]any

// Well-known entry fields.
const (
	FieldID           = "id"
	FieldS3Key        = "s3Key"
	FieldOriginalURL  = "originalUrl"
	FieldThumbnailURL = "thumbnailUrl"
	FieldSize         = "size"
	FieldLastModified = "lastModified"
	FieldETag         = "etag"
	FieldFormat       = "format"
	FieldIsHeic       = "isHeic"
	FieldCamera       = "camera"
	FieldLens         = "lens"
)

// String returns the field's value when it is a string.
func (e Entry) String(field string) (string, bool) {
	v, ok := e[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (e Entry) ID() string {
	s, _ := e.String(FieldID)
	return s
}

func (e Entry) S3Key() string {
	s, _ := e.String(FieldS3Key)
	return s
}

func (e Entry) ETag() string {
	s, _ := e.String(FieldETag)
	return s
}

// Clone returns a shallow copy of the entry.
func (e Entry) Clone() Entry {
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Document is the persisted manifest.
type Document struct {
	Version Version  `json:"version"`
	Data    []Entry  `json:"data"`
	Cameras []string `json:"cameras"`
	Lenses  []string `json:"lenses"`
}

// Empty returns an empty manifest at the current version.
func Empty() *Document {
	return &Document{
		Version: CurrentVersion,
		Data:    []Entry{},
		Cameras: []string{},
		Lenses:  []string{},
	}
}

// Clone copies the document so steps can edit it without touching the original.
func (d *Document) Clone() *Document {
	out := &Document{
		Version: d.Version,
		Data:    make([]Entry, len(d.Data)),
		Cameras: append([]string{}, d.Cameras...),
		Lenses:  append([]string{}, d.Lenses...),
	}
	for i, e := range d.Data {
		if e != nil {
			out.Data[i] = e.Clone()
		}
	}
	return out
}

// Decode reads a manifest from r. Errors from r are returned as is; bytes that
// are not exactly one JSON document wrap ErrMalformed. The version is not
// checked here since the migrator decides what to do with it.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &doc, nil
}

// Encode writes doc to w as indented JSON. Nil slices are written as [].
func Encode(w io.Writer, doc *Document) error {
	out := *doc
	if out.Data == nil {
		out.Data = []Entry{}
	}
	if out.Cameras == nil {
		out.Cameras = []string{}
	}
	if out.Lenses == nil {
		out.Lenses = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}

// Validate checks the invariants of a document at the current version.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("manifest is nil")
	}
	if doc.Version != CurrentVersion {
		return fmt.Errorf("manifest version %q is not current (%s)", doc.Version, CurrentVersion)
	}
	for i, e := range doc.Data {
		if thumb, ok := e.String(FieldThumbnailURL); ok && strings.HasSuffix(thumb, deprecatedThumbnailExt) {
			return fmt.Errorf("entry %d (%s) has deprecated thumbnail %q", i, e.ID(), thumb)
		}
	}
	return nil
}
