package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes exported compliance reports below a root directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates root if needed. An empty root means the working
// directory.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory %s: %w", root, err)
	}
	return &LocalStorage{baseDir: filepath.Clean(root)}, nil
}

// Save stores data under name and returns the written path. The file is
// staged next to its target and renamed so readers never see a partial
// report.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	target, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*")
	if err != nil {
		return "", fmt.Errorf("stage report %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write report %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("flush report %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod report %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("publish report %s: %w", name, err)
	}
	return target, nil
}

// Path resolves name against the root. Absolute names are kept as given.
func (s *LocalStorage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.baseDir, name)
}

func (s *LocalStorage) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("report file name is empty")
	}
	target := s.Path(name)
	if filepath.IsAbs(name) {
		return target, nil
	}
	rel, err := filepath.Rel(s.baseDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("report file %s escapes %s", name, s.baseDir)
	}
	return target, nil
}
