// Package storage provides the object store boundary used for medical
// photos: upload, bulk remove, time-limited signed URLs with a public URL
// fallback.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the contract for blob storage backends. PublicURL has no
// error path: it derives a URL from the path without talking to the backend.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	Remove(ctx context.Context, paths []string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	PublicURL(path string) string
}

// MemoryStore is a thread-safe, in-memory ObjectStore for tests and
// development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// SignErr, when set, makes SignedURL fail so tests can exercise the
	// public URL fallback.
	SignErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, path string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	s.mu.Lock()
	s.objects[path] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range paths {
		delete(s.objects, p)
	}
	return nil
}

func (s *MemoryStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	if s.SignErr != nil {
		return "", s.SignErr
	}

	s.mu.RLock()
	_, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}

	return fmt.Sprintf("memory://%s?expires=%d", path, int(ttl.Seconds())), nil
}

func (s *MemoryStore) PublicURL(path string) string {
	return "memory://" + path
}

// Get returns the stored object bytes. Test helper.
func (s *MemoryStore) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[path]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Len returns the number of stored objects. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
