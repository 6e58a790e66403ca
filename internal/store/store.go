package store

import (
	"fmt"
	"time"

	"github.com/jozzzzep/shrink/internal/observability"
	"github.com/jozzzzep/shrink/transport"
)

// Store persists binary buffers through a text-only Backend by
// rendering them with a transport.Adapter. Round trips are byte-exact;
// buffer contents, length prefix included, stay opaque here.
type Store struct {
	backend Backend
	adapter transport.Adapter
	name    string
}

// New wraps an already-open backend. A nil adapter means Base64.
func New(backend Backend, backendName string, adapter transport.Adapter) *Store {
	if adapter == nil {
		adapter = transport.Base64{}
	}
	return &Store{backend: backend, adapter: adapter, name: backendName}
}

// OpenStore opens the named registry backend and wraps it.
func OpenStore(backendName string, opts Options, adapter transport.Adapter) (*Store, error) {
	backend, err := Open(backendName, opts)
	if err != nil {
		return nil, err
	}
	return New(backend, backendName, adapter), nil
}

func (s *Store) PutBuffer(key string, buf []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	start := time.Now()
	err := s.backend.Put(key, s.adapter.Encode(buf))
	observability.RecordStoreOp(s.name, "put", time.Since(start), err == nil)
	return err
}

func (s *Store) GetBuffer(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	start := time.Now()
	value, err := s.backend.Get(key)
	observability.RecordStoreOp(s.name, "get", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	buf, err := s.adapter.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("store: value at %q is not valid %s: %w", key, s.adapter.Name(), err)
	}
	return buf, nil
}

func (s *Store) DeleteBuffer(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	start := time.Now()
	err := s.backend.Delete(key)
	observability.RecordStoreOp(s.name, "delete", time.Since(start), err == nil)
	return err
}

func (s *Store) ListKeys(prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.backend.List(prefix)
	observability.RecordStoreOp(s.name, "list", time.Since(start), err == nil)
	return keys, err
}

// KeyCount reports how many buffers the backend holds.
func (s *Store) KeyCount() (int, error) {
	keys, err := s.ListKeys("")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Adapter exposes the configured text encoding.
func (s *Store) Adapter() transport.Adapter {
	return s.adapter
}

// BackendName identifies the backend for logs and metrics.
func (s *Store) BackendName() string {
	return s.name
}

func (s *Store) Close() error {
	return s.backend.Close()
}
