package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

const upsertSQL = `
INSERT INTO records (id, document_name, position, content, embedding, dimensions)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	document_name = excluded.document_name,
	position      = excluded.position,
	content       = excluded.content,
	embedding     = excluded.embedding,
	dimensions    = excluded.dimensions`

// Upsert writes all records or none. A record with an existing ID
// replaces it.
func (s *Store) Upsert(ctx context.Context, records []domain.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record %d of %s has no id", domain.ErrStore, i, r.DocumentName)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrStore, err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.DocumentName, r.Position, r.Content,
			encodeVector(r.Embedding), len(r.Embedding)); err != nil {
			return fmt.Errorf("%w: upsert %s: %w", domain.ErrStore, r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrStore, err)
	}
	return nil
}

// Count reports how many records the store holds.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrStore, err)
	}
	return n, nil
}

// encodeVector packs v as little-endian float32s.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// decodeVector reverses encodeVector. A length that is not a multiple of
// four means a corrupt row.
func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob of %d bytes", len(b))
	}
	if len(b) == 0 {
		return nil, nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
