package memory

import (
	"context"
	"sync"

	"minato-cat-support/internal/ports/blob"
)

type Object struct {
	ContentType string
	Data        []byte
}

// Store guarda blobs en memoria (modo local y tests).
type Store struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func New() *Store {
	return &Store{objects: map[string]Object{}}
}

func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", blob.ErrEmptyObject
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.objects[key] = Object{ContentType: contentType, Data: cp}
	s.mu.Unlock()

	return "mem://" + key, nil
}

func (s *Store) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o, ok
}
