// Package local stores extraction artifacts on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"finlens/internal/domain"
)

// Sink writes artifacts as files in a single directory.
type Sink struct {
	dir string
}

// NewSink creates the directory if needed and returns a Sink rooted there.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Sink) Dir() string {
	return s.dir
}

func (s *Sink) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("artifact name %q: %w", name, domain.ErrArtifactNotFound)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes content to dir/name.
func (s *Sink) Save(_ context.Context, name string, content []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// Download reads dir/name. Names containing path separators are never resolved.
func (s *Sink) Download(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}
