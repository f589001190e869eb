package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/storage"
)

// Source enumerates and opens legacy export files.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// FileSource reads a single CSV file or every CSV file in a directory.
type FileSource struct {
	Path string
}

func (s FileSource) List(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	if !info.IsDir() {
		return []string{s.Path}, nil
	}

	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.Path, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isCSV(e.Name()) {
			names = append(names, filepath.Join(s.Path, e.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// StorageSource reads the CSV objects under Prefix of an object store.
type StorageSource struct {
	Store  storage.ObjectStorage
	Prefix string
}

func (s StorageSource) List(ctx context.Context) ([]string, error) {
	objects, err := s.Store.ListObjects(ctx, s.Prefix)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, obj := range objects {
		if isCSV(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

func (s StorageSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Store.GetObject(ctx, name)
}
