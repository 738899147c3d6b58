// Package postgres provides a PostgreSQL-backed DocumentStore. Documents live
// in a single table keyed by (collection, id) with the payload as JSONB; merge
// patches apply server-side with the || operator.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hostelcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion.
var _ domain.DocumentStore = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/hostelcore?sslmode=disable"
)

// Store persists documents to PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore opens a PostgreSQL-backed store using the provided DSN (falls back
// to defaultDSN) and ensures the documents table exists.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Load returns all documents of a collection ordered by id.
func (s *Store) Load(ctx context.Context, collection string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var payload []byte
		if err := rows.Scan(&doc.ID, &payload); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Payload = payload
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Save overwrites-or-creates a document.
func (s *Store) Save(ctx context.Context, collection, id string, payload json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents (collection, id, payload) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET payload = excluded.payload`, collection, id, []byte(payload))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Update merges the patch's top-level keys into the stored JSONB payload.
// Absent ids are a no-op.
func (s *Store) Update(ctx context.Context, collection, id string, patch json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `UPDATE documents SET payload = payload || $3::jsonb
		WHERE collection = $1 AND id = $2`, collection, id, []byte(patch))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes a document; deleting an absent id succeeds.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
