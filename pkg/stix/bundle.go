package stix

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muchdogesec/location2stix/pkg/errors"
)

// Bundle is the STIX container wrapping every emitted object.
type Bundle struct {
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	Objects []json.RawMessage `json:"objects"`
}

// NewBundle encodes objects, in order, into a bundle.
// The bundle identifier is derived from the object identifiers, so the same
// objects in the same order always produce the same bundle.
func NewBundle(objects ...Object) (*Bundle, error) {
	b := &Bundle{
		Type:    TypeBundle,
		Objects: make([]json.RawMessage, 0, len(objects)),
	}
	ids := make([]string, 0, len(objects))
	for _, obj := range objects {
		raw, err := ToRaw(obj)
		if err != nil {
			return nil, err
		}
		b.Objects = append(b.Objects, raw.Raw)
		ids = append(ids, raw.ID)
	}
	b.ID = BundleID(ids)
	return b, nil
}

// Len returns the number of objects in the bundle.
func (b *Bundle) Len() int { return len(b.Objects) }

// Decode parses every object in the bundle.
func (b *Bundle) Decode() ([]*RawObject, error) {
	out := make([]*RawObject, 0, len(b.Objects))
	for i, data := range b.Objects {
		obj, err := ParseObject(data)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// WriteJSON encodes b as four-space indented JSON and writes it to w.
func WriteJSON(b *Bundle, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidObject, err, "encode bundle")
	}
	return nil
}

// ExportJSON writes b to a file at path, creating parent directories.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(b *Bundle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteJSON(b, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadBundle decodes a bundle from r.
// The container must have type "bundle"; objects are left undecoded.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidObject, err, "decode bundle")
	}
	if b.Type != TypeBundle {
		return nil, errors.New(errors.ErrCodeInvalidObject, "expected type %q, got %q", TypeBundle, b.Type)
	}
	return &b, nil
}

// ImportBundle reads a bundle file at path.
func ImportBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadBundle(f)
}
