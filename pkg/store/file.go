package store

import (
	"bufio"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// indexFile records identifiers in insertion order, one per line.
const indexFile = ".index"

// FileStore keeps each object as <dir>/<type>/<id>.json.
// Other files in dir (such as a bundle written next to the objects) are
// ignored by Query and left in place by Reset.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string { return s.dir }

// Put writes obj to its file and records it in the index on first write.
func (s *FileStore) Put(ctx context.Context, obj stix.Object) error {
	raw, err := stix.ToRaw(obj)
	if err != nil {
		return err
	}
	path, err := s.path(raw.ID)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	existed := statErr == nil

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, raw.Raw, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", raw.ID)
	}
	if existed {
		return nil
	}
	return s.appendIndex(raw.ID)
}

// Get reads the object stored under id.
func (s *FileStore) Get(ctx context.Context, id string) (*stix.RawObject, bool, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "read %s", id)
	}
	obj, err := stix.ParseObject(data)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "corrupt entry %s", id)
	}
	return obj, true, nil
}

// Query reads every indexed object in insertion order.
func (s *FileStore) Query(ctx context.Context) ([]*stix.RawObject, error) {
	ids, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]*stix.RawObject, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrCodeStore, "indexed object %s is missing", id)
		}
		out = append(out, obj)
	}
	return out, nil
}

// Reset removes the index and every staged object file. Anything else in
// the directory, such as a bundle written next to the objects, is kept.
func (s *FileStore) Reset(ctx context.Context) error {
	if err := os.Remove(filepath.Join(s.dir, indexFile)); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeStore, err, "remove index")
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeStore, err, "read %s", s.dir)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.clearTypeDir(e.Name()); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create %s", s.dir)
	}
	return nil
}

// clearTypeDir removes the <typ>--<uuid>.json files under dir/typ and the
// directory itself once nothing else is left in it.
func (s *FileStore) clearTypeDir(typ string) error {
	dir := filepath.Join(s.dir, typ)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "read %s", dir)
	}
	kept := 0
	for _, e := range entries {
		id, isJSON := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !isJSON || !stix.IsValidID(id, typ) {
			kept++
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "remove %s", id)
		}
	}
	if kept == 0 {
		if err := os.Remove(dir); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "remove %s", dir)
		}
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// path converts an identifier to a file path.
// Identifiers are validated first so they cannot escape the store directory.
func (s *FileStore) path(id string) (string, error) {
	typ := stix.TypeOf(id)
	if !stix.IsValidID(id, typ) {
		return "", errors.New(errors.ErrCodeInvalidObject, "invalid STIX id %q", id)
	}
	return filepath.Join(s.dir, typ, id+".json"), nil
}

func (s *FileStore) appendIndex(id string) error {
	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "open index")
	}
	if _, err := f.WriteString(id + "\n"); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write index")
	}
	return f.Close()
}

func (s *FileStore) readIndex() ([]string, error) {
	f, err := os.Open(filepath.Join(s.dir, indexFile))
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open index")
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read index")
	}
	return ids, nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
