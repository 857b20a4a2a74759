// store_test.go - Tests for the in-memory preview blob store
package preview

import (
	"io"
	"testing"
)

func TestMemStore_PutAndGet(t *testing.T) {
	store := NewMemStore()

	blob := store.Put("photo.png", []byte("pngbytes"))
	if blob.ID == "" {
		t.Error("Expected blob ID to be set")
	}
	if blob.Name != "photo.png" {
		t.Errorf("Expected name 'photo.png', got %q", blob.Name)
	}
	if blob.Size != 8 {
		t.Errorf("Expected size 8, got %d", blob.Size)
	}

	got, err := store.Get(blob.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != blob.ID {
		t.Errorf("Expected id %q, got %q", blob.ID, got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 blob, got %d", store.Len())
	}
}

func TestMemStore_OpenReadsStoredBytes(t *testing.T) {
	store := NewMemStore()

	data := []byte("hello world")
	blob := store.Put("a.txt", data)

	// Mutating the caller's slice must not leak into the store.
	data[0] = 'X'

	rc, err := store.Open(blob.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Expected 'hello world', got %q", string(got))
	}
}

func TestMemStore_Release(t *testing.T) {
	store := NewMemStore()

	blob := store.Put("a.txt", []byte("data"))
	store.Release(blob.ID)

	if store.Len() != 0 {
		t.Errorf("Expected 0 blobs after release, got %d", store.Len())
	}
	if _, err := store.Get(blob.ID); err == nil {
		t.Error("Expected Get to fail after release")
	}
	if _, err := store.Open(blob.ID); err == nil {
		t.Error("Expected Open to fail after release")
	}

	// Releasing an unknown id must be a silent no-op.
	store.Release("no-such-id")
	store.Release(blob.ID)
}

func TestMemStore_GetUnknown(t *testing.T) {
	store := NewMemStore()

	if _, err := store.Get("missing"); err == nil {
		t.Error("Expected error for unknown blob")
	}
	if _, err := store.Open("missing"); err == nil {
		t.Error("Expected error for unknown blob")
	}
}
