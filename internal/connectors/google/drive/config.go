package drive

import (
	"slices"
	"strings"
)

// DefaultPageSize is the files.list page size.
const DefaultPageSize int64 = 100

// Config selects the Drive files to list.
type Config struct {
	// FolderID is the Drive folder whose direct children are listed.
	// "root" lists the top of My Drive.
	FolderID string

	// MimeTypeFilter limits listing to specific MIME types (optional).
	MimeTypeFilter []string

	// MaxResults is the page size for API requests.
	MaxResults int64

	// Accept further restricts regular files by name, typically to those
	// an extractor supports. Google Workspace files are always exported.
	Accept func(name string) bool
}

// ParseMimeTypes splits a comma-separated MIME type list.
func ParseMimeTypes(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.FolderID == "" {
		out.FolderID = "root"
	}
	if out.MaxResults <= 0 {
		out.MaxResults = DefaultPageSize
	}
	return out
}

// query builds the files.list search expression.
func (c *Config) query() string {
	folder := strings.ReplaceAll(c.FolderID, `'`, `\'`)
	q := "'" + folder + "' in parents and trashed = false and mimeType != '" + MimeTypeFolder + "'"
	if len(c.MimeTypeFilter) == 0 {
		return q
	}
	clauses := make([]string, 0, len(c.MimeTypeFilter))
	for _, m := range c.MimeTypeFilter {
		clauses = append(clauses, "mimeType = '"+strings.ReplaceAll(m, `'`, `\'`)+"'")
	}
	return q + " and (" + strings.Join(clauses, " or ") + ")"
}

func (c *Config) allowsMime(mimeType string) bool {
	return len(c.MimeTypeFilter) == 0 || slices.Contains(c.MimeTypeFilter, mimeType)
}
