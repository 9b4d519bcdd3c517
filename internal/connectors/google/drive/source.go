// Package drive lists the files of a Google Drive folder as source documents.
package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/Hmv123/RAG-Application/internal/connectors/google"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

const listFields googleapi.Field = "nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink)"

// Source lists one Drive folder.
type Source struct {
	svc     *drive.Service
	cfg     Config
	limiter *google.RateLimiter
}

// New creates a Drive folder source. A nil limiter uses the default Drive quota.
func New(svc *drive.Service, cfg Config, limiter *google.RateLimiter) *Source {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultDriveRateLimit)
	}
	return &Source{svc: svc, cfg: cfg.withDefaults(), limiter: limiter}
}

// Name returns "gdrive:<folder id>".
func (s *Source) Name() string {
	return "gdrive:" + s.cfg.FolderID
}

// List pages through the folder and fetches each accepted file.
// Files that cannot be fetched are logged and skipped; listing errors abort.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	files, err := s.listFiles(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.SourceDocument, 0, len(files))
	for _, f := range files {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		doc, err := toSourceDocument(ctx, s.svc, f)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				logger.Debug("Drive quota hit, backing off %s", s.limiter.Throttled())
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping drive file %s: %v", f.Name, err)
			continue
		}
		s.limiter.Succeeded()
		docs = append(docs, doc)
	}

	logger.Debug("Drive folder %s: %d of %d files fetched", s.cfg.FolderID, len(docs), len(files))
	return docs, nil
}

func (s *Source) listFiles(ctx context.Context) ([]*drive.File, error) {
	var (
		out       []*drive.File
		pageToken string
	)

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := s.svc.Files.List().
			Q(s.cfg.query()).
			Fields(listFields).
			PageSize(s.cfg.MaxResults).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				s.limiter.Throttled()
			}
			return nil, google.WrapError(err, fmt.Sprintf("list folder %s", s.cfg.FolderID))
		}

		s.limiter.Succeeded()
		for _, f := range resp.Files {
			if s.accepts(f) {
				out = append(out, f)
			}
		}

		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (s *Source) accepts(f *drive.File) bool {
	switch {
	case f.MimeType == MimeTypeFolder:
		return false
	case !s.cfg.allowsMime(f.MimeType):
		return false
	case isWorkspaceFile(f.MimeType):
		return true
	case strings.HasPrefix(f.MimeType, workspacePrefix):
		return false
	case f.Size > MaxExportSize:
		logger.Debug("Skipping drive file %s: %d bytes exceeds limit", f.Name, f.Size)
		return false
	case s.cfg.Accept != nil:
		return s.cfg.Accept(f.Name)
	default:
		return true
	}
}
