package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/rank"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Query answers with at most q.TopK records, best first. A vector query
// ranks by cosine similarity; a text-only query by FTS5 bm25.
func (s *Store) Query(ctx context.Context, q domain.IndexQuery) ([]domain.RetrievedRecord, error) {
	switch {
	case q.TopK <= 0:
		return nil, nil
	case q.Vector != nil:
		return s.nearest(ctx, q.Vector, q.TopK)
	default:
		return s.search(ctx, q.Text, q.TopK)
	}
}

// nearest scores only records embedded with the same dimensions, so rows
// from an earlier embedding model never compare against the new one.
func (s *Store) nearest(ctx context.Context, vector []float32, k int) ([]domain.RetrievedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, document_name, embedding FROM records WHERE dimensions = ? ORDER BY seq",
		len(vector))
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrStore, err)
	}

	var scored []domain.RetrievedRecord
	err = scan(rows, func(rows *sql.Rows) error {
		var r domain.RetrievedRecord
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Content, &r.DocumentName, &blob); err != nil {
			return err
		}
		emb, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		r.Score = rank.Cosine(vector, emb)
		scored = append(scored, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rank.Top(scored, k), nil
}

const searchSQL = `
SELECT r.id, r.content, r.document_name, -bm25(records_fts)
FROM records_fts
JOIN records r ON r.seq = records_fts.rowid
WHERE records_fts MATCH ?
ORDER BY bm25(records_fts)
LIMIT ?`

func (s *Store) search(ctx context.Context, text string, k int) ([]domain.RetrievedRecord, error) {
	match := ftsMatch(text)
	if match == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, searchSQL, match, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrStore, err)
	}

	var found []domain.RetrievedRecord
	err = scan(rows, func(rows *sql.Rows) error {
		var r domain.RetrievedRecord
		if err := rows.Scan(&r.ID, &r.Content, &r.DocumentName, &r.Score); err != nil {
			return err
		}
		found = append(found, r)
		return nil
	})
	return found, err
}

// scan calls each for every row, closes rows and wraps any failure.
func scan(rows *sql.Rows, each func(*sql.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return fmt.Errorf("%w: read row: %w", domain.ErrStore, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: read rows: %w", domain.ErrStore, err)
	}
	return nil
}

// ftsMatch quotes each term and ORs them, so user punctuation never
// reaches the FTS5 query parser.
func ftsMatch(text string) string {
	terms := rank.Terms(text)
	for i, t := range terms {
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " OR ")
}
