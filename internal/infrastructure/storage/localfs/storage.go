package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Storage reads regulation documents from a directory on disk.
type Storage struct {
	basePath   string
	extensions map[string]struct{}
}

var defaultExtensions = []string{".txt", ".md"}

func New(basePath string, extensions ...string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/regulations"
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("stat document dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document path %s is not a directory", basePath)
	}
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Storage{basePath: basePath, extensions: exts}, nil
}

// List returns the document keys directly under the base path, sorted.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("read document dir: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := s.extensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			keys = append(keys, entry.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if key != filepath.Base(key) {
		return nil, fmt.Errorf("document key %q must be a plain file name", key)
	}
	f, err := os.Open(filepath.Join(s.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
