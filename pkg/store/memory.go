package store

import (
	"context"

	"github.com/muchdogesec/location2stix/pkg/stix"
)

// MemoryStore keeps objects in process memory.
// Useful for testing or when nothing should touch the disk.
type MemoryStore struct {
	objects map[string]*stix.RawObject
	order   []string
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*stix.RawObject)}
}

// Put stores obj.
func (s *MemoryStore) Put(ctx context.Context, obj stix.Object) error {
	raw, err := stix.ToRaw(obj)
	if err != nil {
		return err
	}
	if _, ok := s.objects[raw.ID]; !ok {
		s.order = append(s.order, raw.ID)
	}
	s.objects[raw.ID] = raw
	return nil
}

// Get returns the object stored under id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*stix.RawObject, bool, error) {
	obj, ok := s.objects[id]
	return obj, ok, nil
}

// Query returns every object in insertion order.
func (s *MemoryStore) Query(ctx context.Context) ([]*stix.RawObject, error) {
	out := make([]*stix.RawObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out, nil
}

// Reset discards every object.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.objects = make(map[string]*stix.RawObject)
	s.order = nil
	return nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
