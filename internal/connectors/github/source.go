package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// MaxFileSize is the largest blob fetched, in bytes.
const MaxFileSize = 1024 * 1024

// Config identifies the repository files to list.
type Config struct {
	Owner string
	Repo  string

	// Ref is a branch, tag or commit SHA. Empty means the default branch.
	Ref string

	// FilePatterns are glob patterns for file filtering. Empty means all files.
	FilePatterns []string

	// Accept further restricts files, typically to those an extractor supports.
	Accept func(path string) bool
}

// ParseRepo parses "owner/repo" or "owner/repo@ref".
func ParseRepo(s string) (owner, repo, ref string, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "https://github.com/")
	s, ref, _ = strings.Cut(s, "@")
	owner, repo, ok := strings.Cut(strings.TrimSuffix(s, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return owner, strings.TrimSuffix(repo, ".git"), ref, nil
}

// Source lists the files of one repository ref.
type Source struct {
	client *Client
	cfg    Config
}

// New creates a repository source.
func New(client *Client, cfg Config) *Source {
	return &Source{client: client, cfg: cfg}
}

// Name returns "github:owner/repo" with "@ref" when a ref is set.
func (s *Source) Name() string {
	name := "github:" + s.cfg.Owner + "/" + s.cfg.Repo
	if s.cfg.Ref != "" {
		name += "@" + s.cfg.Ref
	}
	return name
}

// List fetches every matching file blob. Document names are repository paths.
// Files that cannot be fetched are logged and skipped.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	owner, name := s.cfg.Owner, s.cfg.Repo

	ref := s.cfg.Ref
	if ref == "" {
		repo, err := s.client.GetRepository(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		ref = repo.GetDefaultBranch()
	}

	tree, err := s.client.GetTree(ctx, owner, name, ref)
	if err != nil {
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("github: tree of %s/%s@%s is truncated, some files will be missing", owner, name, ref)
	}

	docs := make([]domain.SourceDocument, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}

		path := entry.GetPath()
		if !matchesPatterns(path, s.cfg.FilePatterns) || isBinaryExtension(path) {
			continue
		}
		if s.cfg.Accept != nil && !s.cfg.Accept(path) {
			continue
		}
		if entry.GetSize() > MaxFileSize {
			logger.Debug("github: skipping %s: %d bytes", path, entry.GetSize())
			continue
		}

		blob, err := s.client.GetBlob(ctx, owner, name, entry.GetSHA())
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			logger.Warn("github: skipping %s: %v", path, err)
			continue
		}
		content, err := decodeBlob(blob)
		if err != nil {
			logger.Warn("github: skipping %s: %v", path, err)
			continue
		}
		mimeType := detectFileMIMEType(path)
		if strings.HasPrefix(mimeType, "text/") && looksBinary(content) {
			logger.Debug("github: skipping %s: binary content", path)
			continue
		}

		docs = append(docs, domain.SourceDocument{
			Name:     path,
			MIMEType: mimeType,
			Content:  content,
			Metadata: map[string]any{
				"owner":    owner,
				"repo":     name,
				"ref":      ref,
				"sha":      entry.GetSHA(),
				"size":     entry.GetSize(),
				"html_url": fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", owner, name, ref, path),
			},
		})
	}

	return docs, nil
}
