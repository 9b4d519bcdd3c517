// Package weaviate provides a Weaviate-backed index store.
//
// Records are written as objects of a single class with vectorizer "none":
// the pipeline supplies every vector itself. Vector queries use nearVector,
// text-only queries use BM25.
package weaviate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

const (
	// DefaultClass is the class records are written to.
	DefaultClass = "Chunk"

	// batchSize is the number of objects sent per batch request.
	batchSize = 200
)

// Property names of the record class.
const (
	propContent      = "content"
	propDocumentName = "documentName"
	propPosition     = "position"
	propRecordID     = "recordId"
)

// objectNamespace derives Weaviate object UUIDs from record IDs that are not UUIDs.
var objectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragapp:weaviate-object"))

// Config holds Weaviate connection settings.
type Config struct {
	// Host is the Weaviate host and port, e.g. "localhost:8080".
	// A scheme prefix is accepted and overrides Scheme.
	Host string

	// Scheme is http or https. Defaults to http.
	Scheme string

	// APIKey authenticates against Weaviate Cloud.
	APIKey string

	// Class is the class name. Defaults to DefaultClass.
	Class string
}

// Store is a Weaviate-backed driven.IndexStore.
type Store struct {
	client *weaviate.Client
	class  string
}

// NewStore connects to Weaviate and creates the record class if it is missing.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	scheme, host := splitHost(cfg.Host, cfg.Scheme)
	if host == "" {
		return nil, fmt.Errorf("%w: weaviate host is required", domain.ErrConfiguration)
	}
	class := cfg.Class
	if class == "" {
		class = DefaultClass
	}

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("%w: creating weaviate client: %w", domain.ErrStore, err)
	}

	s := &Store{client: client, class: class}
	if err := s.ensureClass(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// splitHost separates an optional scheme prefix from host.
func splitHost(host, scheme string) (string, string) {
	for _, prefix := range []string{"https", "http"} {
		if rest, ok := strings.CutPrefix(host, prefix+"://"); ok {
			return prefix, strings.TrimSuffix(rest, "/")
		}
	}
	if scheme == "" {
		scheme = "http"
	}
	return scheme, strings.TrimSuffix(host, "/")
}

// ensureClass creates the record class unless the schema already has it.
func (s *Store) ensureClass(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: reading weaviate schema: %w", domain.ErrStore, err)
	}
	for _, c := range schema.Classes {
		if strings.EqualFold(c.Class, s.class) {
			return nil
		}
	}

	class := &models.Class{
		Class:       s.class,
		Description: "Document chunks indexed for retrieval",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: propContent, DataType: []string{"text"}},
			{Name: propDocumentName, DataType: []string{"text"}},
			{Name: propPosition, DataType: []string{"int"}},
			{Name: propRecordID, DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("%w: creating class %s: %w", domain.ErrStore, s.class, err)
	}
	return nil
}

// Upsert writes records in batches. Objects are keyed by record ID, so a
// repeated ID replaces the earlier object.
func (s *Store) Upsert(ctx context.Context, records []domain.IndexedRecord) error {
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		batcher := s.client.Batch().ObjectsBatcher()
		for _, r := range records[start:end] {
			if r.ID == "" {
				return fmt.Errorf("%w: record without id", domain.ErrStore)
			}
			batcher = batcher.WithObjects(&models.Object{
				Class: s.class,
				ID:    objectID(r.ID),
				Properties: map[string]interface{}{
					propContent:      r.Content,
					propDocumentName: r.DocumentName,
					propPosition:     r.Position,
					propRecordID:     r.ID,
				},
				Vector: r.Embedding,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: inserting batch %d-%d: %w", domain.ErrStore, start, end, err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("%w: inserting object %s: %s",
					domain.ErrStore, obj.ID, obj.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

// Query returns the q.TopK most relevant records.
func (s *Store) Query(ctx context.Context, q domain.IndexQuery) ([]domain.RetrievedRecord, error) {
	if q.TopK <= 0 {
		return nil, nil
	}

	fields := []graphql.Field{
		{Name: propContent},
		{Name: propDocumentName},
		{Name: propRecordID},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}, {Name: "score"}}},
	}

	get := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithLimit(q.TopK)
	if q.Vector != nil {
		get = get.WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(q.Vector))
	} else {
		if strings.TrimSpace(q.Text) == "" {
			return nil, nil
		}
		get = get.WithBM25(s.client.GraphQL().Bm25ArgBuilder().WithQuery(q.Text))
	}

	resp, err := get.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %w", domain.ErrStore, s.class, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: querying %s: %s", domain.ErrStore, s.class, resp.Errors[0].Message)
	}

	get0, _ := resp.Data["Get"].(map[string]interface{})
	items, _ := get0[s.class].([]interface{})

	results := make([]domain.RetrievedRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, toRecord(obj))
	}
	return results, nil
}

// Count returns the number of objects in the record class.
func (s *Store) Count(ctx context.Context) (int, error) {
	resp, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s: %w", domain.ErrStore, s.class, err)
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("%w: counting %s: %s", domain.ErrStore, s.class, resp.Errors[0].Message)
	}

	agg, _ := resp.Data["Aggregate"].(map[string]interface{})
	groups, _ := agg[s.class].([]interface{})
	if len(groups) == 0 {
		return 0, nil
	}
	group, _ := groups[0].(map[string]interface{})
	meta, _ := group["meta"].(map[string]interface{})
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// Close is a no-op; the client holds no persistent connection.
func (s *Store) Close() error {
	return nil
}

// objectID returns the record ID as a Weaviate UUID, deriving one when the
// ID is not already a UUID.
func objectID(id string) strfmt.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return strfmt.UUID(u.String())
	}
	return strfmt.UUID(uuid.NewSHA1(objectNamespace, []byte(id)).String())
}

// toRecord converts one GraphQL result object.
func toRecord(obj map[string]interface{}) domain.RetrievedRecord {
	r := domain.RetrievedRecord{}
	r.Content, _ = obj[propContent].(string)
	r.DocumentName, _ = obj[propDocumentName].(string)
	r.ID, _ = obj[propRecordID].(string)

	additional, _ := obj["_additional"].(map[string]interface{})
	if r.ID == "" {
		r.ID, _ = additional["id"].(string)
	}
	if d, ok := number(additional["distance"]); ok {
		r.Score = 1 - d
	} else if sc, ok := number(additional["score"]); ok {
		r.Score = sc
	}
	return r
}

// number reads a GraphQL numeric value. BM25 scores arrive as strings.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
