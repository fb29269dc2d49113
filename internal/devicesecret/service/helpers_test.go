package service

import (
	"bytes"
	"context"
	"errors"
	"sync"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

var errRandomSource = errors.New("random source exhausted")

// failingReader fails every read.
type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errRandomSource
}

// zeroReader returns only zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// limitedReader serves n bytes of 0xA5 and then fails.
type limitedReader struct {
	n int
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, errRandomSource
	}
	n := min(len(p), r.n)
	for i := 0; i < n; i++ {
		p[i] = 0xA5
	}
	r.n -= n
	return n, nil
}

// memSealedStore is a minimal SealedKeyStore that can be switched offline.
type memSealedStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	offline bool
}

func newMemSealedStore() *memSealedStore {
	return &memSealedStore{data: make(map[string][]byte)}
}

func (s *memSealedStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return nil, errors.New("store offline")
	}
	v, ok := s.data[namespace+"/"+key]
	if !ok {
		return nil, deviceDomain.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (s *memSealedStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return errors.New("store offline")
	}
	s.data[namespace+"/"+key] = bytes.Clone(value)
	return nil
}
