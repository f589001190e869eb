package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// Service is a read-only Google Drive client.
type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// ListFiles lists the non-trashed files directly inside folderID, following
// pagination.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType != '%s'", escapeQuery(folderID), folderMimeType)).
		Fields("nextPageToken, files(id, name, mimeType, size)").
		OrderBy("name").
		Context(ctx)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, Size: f.Size})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list drive folder %s: %w", folderID, err)
	}
	return files, nil
}

// OpenCSV streams a file as CSV. Native spreadsheets are exported, anything
// else is downloaded as stored.
func (s *Service) OpenCSV(ctx context.Context, file File) (io.ReadCloser, error) {
	if file.MimeType == spreadsheetMimeType {
		resp, err := s.srv.Files.Export(file.ID, "text/csv").Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("unable to export %s: %w", file.Name, err)
		}
		return resp.Body, nil
	}

	resp, err := s.srv.Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", file.Name, err)
	}
	return resp.Body, nil
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}
