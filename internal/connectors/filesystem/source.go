// Package filesystem provides a document source over a local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource = (*Source)(nil)
	_ driven.Watcher        = (*Source)(nil)
)

// DefaultMaxFileSize skips files larger than 50 MB.
const DefaultMaxFileSize = 50 << 20

// Source lists files under a root directory. A root that is a single file
// lists just that file.
type Source struct {
	root        string
	accept      func(name string) bool
	maxFileSize int64
}

// Option configures a Source.
type Option func(*Source)

// WithFilter only lists files for which accept returns true.
func WithFilter(accept func(name string) bool) Option {
	return func(s *Source) { s.accept = accept }
}

// WithMaxFileSize changes the size above which files are skipped.
func WithMaxFileSize(n int64) Option {
	return func(s *Source) { s.maxFileSize = n }
}

// New creates a filesystem source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{
		root:        filepath.Clean(root),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "dir:<root>".
func (s *Source) Name() string {
	return "dir:" + s.root
}

// List reads every non-hidden file under the root.
// Document names are slash-separated paths relative to the root.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		doc, err := s.read(s.root, filepath.Base(s.root), info)
		if err != nil {
			return nil, err
		}
		return []domain.SourceDocument{doc}, nil
	}

	var docs []domain.SourceDocument
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("skipping %s: %v", path, walkErr)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		name := filepath.ToSlash(rel)
		if s.accept != nil && !s.accept(name) {
			logger.Debug("skipping unsupported file %s", name)
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			return nil
		}
		if fi.Size() > s.maxFileSize {
			logger.Warn("skipping %s: %d bytes exceeds limit", name, fi.Size())
			return nil
		}

		doc, err := s.read(path, name, fi)
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return docs, err
	}
	return docs, nil
}

// read loads one file into a SourceDocument.
func (s *Source) read(path, name string, fi fs.FileInfo) (domain.SourceDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return domain.SourceDocument{
		Name:     name,
		MIMEType: detectMIMEType(name),
		Content:  content,
		Metadata: map[string]any{
			"path":     path,
			"size":     fi.Size(),
			"modified": fi.ModTime().UTC(),
		},
	}, nil
}

// Watch reports the names of files that are created, written, removed or
// renamed under the root. Directories created while watching are added.
// The channel closes when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	base := s.root
	single := ""
	if !info.IsDir() {
		base = filepath.Dir(s.root)
		single = filepath.Base(s.root)
		err = watcher.Add(base)
	} else {
		err = s.addTree(watcher, s.root)
	}
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", s.root, err)
	}

	changes := make(chan string)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, ok := s.handleFsEvent(watcher, base, single, event)
				if !ok {
					continue
				}
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", s.root, err)
			}
		}
	}()

	return changes, nil
}

// addTree watches dir and every non-hidden directory below it.
func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(s.root, path); rel != "." && isHidden(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// handleFsEvent maps an fsnotify event to a document name.
// It returns false for events that do not concern a listed document.
func (s *Source) handleFsEvent(watcher *fsnotify.Watcher, base, single string, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	rel, err := filepath.Rel(base, event.Name)
	if err != nil || isHidden(rel) {
		return "", false
	}
	if single != "" {
		return single, rel == single
	}

	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			if err := s.addTree(watcher, event.Name); err != nil {
				logger.Warn("watching %s: %v", event.Name, err)
			}
			return "", false
		}
	}

	name := filepath.ToSlash(rel)
	if s.accept != nil && !s.accept(name) {
		return "", false
	}
	return name, true
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

// extMIMETypes maps file extensions to MIME types for common types not in Go's registry.
var extMIMETypes = map[string]string{
	".md": "text/markdown", ".markdown": "text/markdown",
	".txt": "text/plain", ".text": "text/plain", ".log": "text/plain",
	".go": "text/x-go", ".py": "text/x-python", ".rs": "text/x-rust",
	".yaml": "text/yaml", ".yml": "text/yaml", ".toml": "text/toml",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectMIMEType determines the MIME type from the file extension.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := extMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if idx := strings.Index(t, ";"); idx != -1 {
			t = strings.TrimSpace(t[:idx])
		}
		return t
	}
	return "application/octet-stream"
}
