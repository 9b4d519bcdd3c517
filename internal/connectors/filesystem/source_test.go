package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(t *testing.T, s *Source) []string {
	t.Helper()
	docs, err := s.List(t.Context())
	require.NoError(t, err)
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

func TestNew(t *testing.T) {
	s := New("/tmp/docs/")

	assert.Equal(t, "dir:/tmp/docs", s.Name())
	assert.Equal(t, int64(DefaultMaxFileSize), s.maxFileSize)
	assert.Nil(t, s.accept)
}

func TestSource_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, "sub", "b.md"), "# beta")
	writeFile(t, filepath.Join(root, ".git", "config"), "hidden")
	writeFile(t, filepath.Join(root, ".env"), "SECRET=1")

	docs, err := New(root).List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, "text/plain", docs[0].MIMEType)
	assert.Equal(t, []byte("alpha"), docs[0].Content)
	assert.Equal(t, int64(5), docs[0].Metadata["size"])

	assert.Equal(t, "sub/b.md", docs[1].Name)
	assert.Equal(t, "text/markdown", docs[1].MIMEType)
}

func TestSource_List_Filter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "drop.exe"), "MZ")

	s := New(root, WithFilter(func(name string) bool { return strings.HasSuffix(name, ".pdf") }))

	assert.Equal(t, []string{"keep.pdf"}, names(t, s))
}

func TestSource_List_MaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.txt"), "ok")
	writeFile(t, filepath.Join(root, "big.txt"), strings.Repeat("x", 100))

	assert.Equal(t, []string{"small.txt"}, names(t, New(root, WithMaxFileSize(10))))
}

func TestSource_List_SingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "report.txt")
	writeFile(t, path, "quarterly")

	docs, err := New(path).List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report.txt", docs[0].Name)
}

func TestSource_List_MissingRoot(t *testing.T) {
	_, err := New("/non/existent/path").List(t.Context())
	assert.ErrorContains(t, err, "root path error")
}

func TestSource_List_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := New(root).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		root := t.TempDir()
		changes, err := New(root).Watch(t.Context())
		require.NoError(t, err)

		writeFile(t, filepath.Join(root, "new-file.txt"), "content")

		select {
		case name := <-changes:
			assert.Equal(t, "new-file.txt", name)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("reports files in new directories", func(t *testing.T) {
		root := t.TempDir()
		changes, err := New(root).Watch(t.Context())
		require.NoError(t, err)

		require.NoError(t, os.Mkdir(filepath.Join(root, "later"), 0o755))
		time.Sleep(100 * time.Millisecond)
		writeFile(t, filepath.Join(root, "later", "c.txt"), "gamma")

		deadline := time.After(2 * time.Second)
		for {
			select {
			case name := <-changes:
				if name == "later/c.txt" {
					return
				}
			case <-deadline:
				t.Fatal("timeout waiting for nested file event")
			}
		}
	})

	t.Run("ignores hidden and filtered files", func(t *testing.T) {
		root := t.TempDir()
		s := New(root, WithFilter(func(name string) bool { return strings.HasSuffix(name, ".txt") }))
		changes, err := s.Watch(t.Context())
		require.NoError(t, err)

		writeFile(t, filepath.Join(root, ".hidden.txt"), "x")
		writeFile(t, filepath.Join(root, "image.png"), "x")
		writeFile(t, filepath.Join(root, "visible.txt"), "x")

		select {
		case name := <-changes:
			assert.Equal(t, "visible.txt", name)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(t.Context())

		assert.ErrorContains(t, err, "root path error")
		assert.Nil(t, changes)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		changes, err := New(t.TempDir()).Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		{"file", "text/plain"},
		{"doc.md", "text/markdown"},
		{"notes.TXT", "text/plain"},
		{"config.yaml", "text/yaml"},
		{"page.html", "text/html"},
		{"doc.pdf", "application/pdf"},
		{"letter.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"file.zzzzunknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, detectMIMEType(tt.filename))
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isHidden(tt.path), tt.path)
	}
}
