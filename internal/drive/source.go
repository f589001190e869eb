package drive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

// FolderSource exposes the CSV files and spreadsheets of one Drive folder to
// the legacy importer. Names returned by List are "<file id>/<file name>".
type FolderSource struct {
	service  *Service
	folderID string

	mu    sync.Mutex
	files map[string]File
}

func NewFolderSource(service *Service, folderID string) *FolderSource {
	return &FolderSource{service: service, folderID: folderID, files: map[string]File{}}
}

func importable(f File) bool {
	return f.MimeType == spreadsheetMimeType ||
		f.MimeType == "text/csv" ||
		strings.EqualFold(path.Ext(f.Name), ".csv")
}

func (s *FolderSource) List(ctx context.Context) ([]string, error) {
	files, err := s.service.ListFiles(ctx, s.folderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for _, f := range files {
		if !importable(f) {
			continue
		}
		name := f.ID + "/" + f.Name
		s.files[name] = f
		names = append(names, name)
	}
	return names, nil
}

func (s *FolderSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	f, ok := s.files[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("drive file %s was not listed", name)
	}
	return s.service.OpenCSV(ctx, f)
}
