package drive

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/Hmv123/RAG-Application/internal/connectors/google"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

type fakeFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     string `json:"size,omitempty"`
}

type fakeDrive struct {
	pages    [][]fakeFile
	contents map[string]string
	exports  map[string]string
	queries  []string
	lists    atomic.Int32
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	switch {
	case path == "files":
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		page := 0
		if tok := r.URL.Query().Get("pageToken"); tok != "" {
			page = int(tok[0] - '0')
		}
		f.lists.Add(1)
		resp := map[string]any{"files": f.pages[page]}
		if page+1 < len(f.pages) {
			resp["nextPageToken"] = string(rune('0' + page + 1))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)

	case strings.HasSuffix(path, "/export"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "files/"), "/export")
		body, ok := f.exports[id+"|"+r.URL.Query().Get("mimeType")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))

	case strings.HasPrefix(path, "files/") && r.URL.Query().Get("alt") == "media":
		id := strings.TrimPrefix(path, "files/")
		body, ok := f.contents[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))

	default:
		http.NotFound(w, r)
	}
}

func newTestSource(t *testing.T, fake *fakeDrive, cfg Config) *Source {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(t.Context(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	limiter := google.NewRateLimiter(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
	return New(svc, cfg, limiter)
}

func TestSource_Name(t *testing.T) {
	s := New(nil, Config{FolderID: "abc"}, nil)
	assert.Equal(t, "gdrive:abc", s.Name())

	s = New(nil, Config{}, nil)
	assert.Equal(t, "gdrive:root", s.Name())
}

func TestSource_List(t *testing.T) {
	fake := &fakeDrive{
		pages: [][]fakeFile{
			{
				{ID: "d1", Name: "Design notes", MimeType: MimeTypeGoogleDoc},
				{ID: "s1", Name: "Budget", MimeType: MimeTypeGoogleSheet},
			},
			{
				{ID: "f1", Name: "readme.txt", MimeType: "text/plain", Size: "11"},
				{ID: "f2", Name: "photo.png", MimeType: "image/png", Size: "10"},
			},
		},
		contents: map[string]string{"f1": "hello drive", "f2": "png"},
		exports: map[string]string{
			"d1|" + ExportMimeText: "the design",
			"s1|" + ExportMimeCSV:  "a,b\n1,2",
		},
	}

	s := newTestSource(t, fake, Config{
		FolderID: "folder-1",
		Accept:   func(name string) bool { return strings.HasSuffix(name, ".txt") },
	})

	docs, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, int32(2), fake.lists.Load())
	assert.Contains(t, fake.queries[0], "'folder-1' in parents")
	assert.Contains(t, fake.queries[0], "trashed = false")

	assert.Equal(t, "Design notes", docs[0].Name)
	assert.Equal(t, ExportMimeText, docs[0].MIMEType)
	assert.Equal(t, "the design", string(docs[0].Content))
	assert.Equal(t, "d1", docs[0].Metadata["file_id"])

	assert.Equal(t, ExportMimeCSV, docs[1].MIMEType)
	assert.Equal(t, "a,b\n1,2", string(docs[1].Content))

	assert.Equal(t, "readme.txt", docs[2].Name)
	assert.Equal(t, "hello drive", string(docs[2].Content))
}

func TestSource_List_SkipsFailedDownloads(t *testing.T) {
	fake := &fakeDrive{
		pages: [][]fakeFile{{
			{ID: "ok", Name: "a.txt", MimeType: "text/plain"},
			{ID: "gone", Name: "b.txt", MimeType: "text/plain"},
		}},
		contents: map[string]string{"ok": "alpha"},
	}

	s := newTestSource(t, fake, Config{FolderID: "f"})
	docs, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.txt", docs[0].Name)
}

func TestSource_List_SkipsOversizedContent(t *testing.T) {
	fake := &fakeDrive{
		pages: [][]fakeFile{{
			{ID: "big", Name: "big.txt", MimeType: "text/plain"},
			{ID: "d", Name: "Drawing", MimeType: "application/vnd.google-apps.drawing"},
			{ID: "ok", Name: "ok.txt", MimeType: "text/plain"},
		}},
		contents: map[string]string{"big": strings.Repeat("x", MaxExportSize+1), "ok": "fits"},
	}

	s := newTestSource(t, fake, Config{FolderID: "f"})
	docs, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ok.txt", docs[0].Name)
}

func TestSource_List_MimeFilter(t *testing.T) {
	fake := &fakeDrive{
		pages: [][]fakeFile{{
			{ID: "p", Name: "doc.pdf", MimeType: "application/pdf"},
			{ID: "t", Name: "t.txt", MimeType: "text/plain"},
		}},
		contents: map[string]string{"p": "%PDF", "t": "text"},
	}

	s := newTestSource(t, fake, Config{FolderID: "f", MimeTypeFilter: []string{"application/pdf"}})
	docs, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc.pdf", docs[0].Name)
	assert.Contains(t, fake.queries[0], "mimeType = 'application/pdf'")
}

func TestSource_List_ListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))
	defer srv.Close()

	svc, err := drive.NewService(t.Context(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	s := New(svc, Config{FolderID: "f"}, nil)
	_, err = s.List(t.Context())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestConfig_Query(t *testing.T) {
	cfg := Config{FolderID: "it's"}
	q := cfg.query()
	assert.Contains(t, q, `'it\'s' in parents`)
	assert.NotContains(t, q, " and (")

	cfg.MimeTypeFilter = []string{"a/b", "c/d"}
	assert.Contains(t, cfg.query(), "(mimeType = 'a/b' or mimeType = 'c/d')")
}

func TestParseMimeTypes(t *testing.T) {
	assert.Nil(t, ParseMimeTypes("  "))
	assert.Equal(t, []string{"a/b", "c/d"}, ParseMimeTypes("a/b, c/d,"))
}
