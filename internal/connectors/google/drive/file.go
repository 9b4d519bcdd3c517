package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"

	"github.com/Hmv123/RAG-Application/internal/connectors/google"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"

	workspacePrefix = "application/vnd.google-apps."
)

// Formats Workspace files are exported to.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxExportSize caps a downloaded or exported file at 5MB.
const MaxExportSize = 5 << 20

// exports lists the Workspace types that can be indexed. Drawings, forms
// and the like have no text export and are skipped.
var exports = map[string]string{
	MimeTypeGoogleDoc:    ExportMimeText,
	MimeTypeGoogleSlides: ExportMimeText,
	MimeTypeGoogleSheet:  ExportMimeCSV,
}

func isWorkspaceFile(mimeType string) bool {
	_, ok := exports[mimeType]
	return ok
}

// fetch downloads a regular file or exports a Workspace file. It returns
// the body and the MIME type of what the body holds.
func fetch(ctx context.Context, svc *drive.Service, f *drive.File) (io.ReadCloser, string, error) {
	var (
		resp *http.Response
		err  error
		mime = f.MimeType
		op   = "download " + f.Name
	)
	if export, ok := exports[f.MimeType]; ok {
		mime, op = export, "export "+f.Name
		resp, err = svc.Files.Export(f.Id, export).Context(ctx).Download()
	} else {
		resp, err = svc.Files.Get(f.Id).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, "", google.WrapError(err, op)
	}
	return resp.Body, mime, nil
}

// toSourceDocument fetches f. Content beyond MaxExportSize is an error
// rather than a silently truncated document.
func toSourceDocument(ctx context.Context, svc *drive.Service, f *drive.File) (domain.SourceDocument, error) {
	body, mime, err := fetch(ctx, svc, f)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxExportSize+1))
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > MaxExportSize {
		return domain.SourceDocument{}, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, f.Name, MaxExportSize)
	}

	return domain.SourceDocument{
		Name:     f.Name,
		MIMEType: mime,
		Content:  data,
		Metadata: map[string]any{
			"file_id":       f.Id,
			"source_mime":   f.MimeType,
			"size":          f.Size,
			"web_link":      f.WebViewLink,
			"modified_time": f.ModifiedTime,
		},
	}, nil
}
