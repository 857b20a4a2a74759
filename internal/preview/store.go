// Package preview owns the in-memory byte blobs backing tracked records.
// A blob is acquired at intake and must be released when its record is
// removed so the underlying bytes can be reclaimed.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Blob is a process-local handle to a file's original bytes.
type Blob struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Store defines the interface for preview blob storage.
type Store interface {
	Put(name string, data []byte) *Blob
	Get(id string) (*Blob, error)
	Open(id string) (io.ReadCloser, error)
	Release(id string)
	Len() int
}

// MemStore implements Store entirely in process memory. Nothing survives a
// restart; the widget is ephemeral per session.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string]*Blob
	data  map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		blobs: make(map[string]*Blob),
		data:  make(map[string][]byte),
	}
}

// Put stores a copy of data under a fresh id and returns its handle.
func (s *MemStore) Put(name string, data []byte) *Blob {
	id := uuid.New().String()
	blob := &Blob{ID: id, Name: name, Size: int64(len(data))}

	// Copy so later mutation of the caller's slice cannot corrupt the blob.
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = blob
	s.data[id] = buf

	return blob
}

// Get retrieves a blob handle by id.
func (s *MemStore) Get(id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", id)
	}
	return blob, nil
}

// Open returns a reader over the blob's bytes.
func (s *MemStore) Open(id string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Release discards a blob and its bytes. Releasing an unknown id is a no-op.
func (s *MemStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, id)
	delete(s.data, id)
}

// Len returns the number of live blobs.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
