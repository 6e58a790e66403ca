// Package store persists text-encoded buffers under string keys.
//
// Backends accept strings only. Binary buffers never reach a backend
// directly; Store renders them through a transport.Adapter on the way
// in and out, so every persisted value is text-safe regardless of
// which backend holds it.
package store

import (
	"errors"
)

var (
	ErrKeyNotFound    = errors.New("store: key not found")
	ErrInvalidKey     = errors.New("store: invalid key")
	ErrUnknownBackend = errors.New("store: unknown backend")
	ErrBackendExists  = errors.New("store: backend already registered")
	ErrBackendNil     = errors.New("store: backend factory is nil")
)

// Backend is a string-only key/value record holder. Get returns
// ErrKeyNotFound for absent keys; Delete of an absent key is a no-op.
type Backend interface {
	Put(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	List(prefix string) ([]string, error)
	Close() error
}

// ValidateKey checks key format: lowercase alphanumerics separated by
// single '.', '-', or '_' runs, no leading or trailing separator.
func ValidateKey(key string) error {
	if !isValidKey(key) {
		return ErrInvalidKey
	}
	return nil
}

func isValidKey(key string) bool {
	if key == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(key)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
