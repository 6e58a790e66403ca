package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS is a one-file-per-key backend rooted at a local directory. Values
// are written verbatim, so an adapter-fed store leaves the directory
// full of plain text files you can cat.
type FS struct {
	root string
}

func NewFS(root string) (*FS, error) {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		return nil, fmt.Errorf("store: fs backend requires a root directory")
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return nil, fmt.Errorf("store: create fs root: %w", err)
	}
	return &FS{root: resolved}, nil
}

func (s *FS) Put(key, value string) error {
	p, err := s.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o644)
}

func (s *FS) Get(key string) (string, error) {
	p, err := s.resolveKey(key)
	if err != nil {
		return "", err
	}
	out, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *FS) Delete(key string) error {
	p, err := s.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FS) List(prefix string) ([]string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(rel, prefix) {
			keys = append(keys, rel)
		}
		return nil
	})
	sort.Strings(keys)
	return keys, nil
}

func (s *FS) Close() error {
	return nil
}

func (s *FS) resolveKey(key string) (string, error) {
	rel := strings.TrimSpace(key)
	if rel == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: absolute path", ErrInvalidKey)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(root, rel))
	if !isWithin(p, root) {
		return "", fmt.Errorf("%w: escapes store root", ErrInvalidKey)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
