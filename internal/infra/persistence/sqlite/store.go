// Package sqlite provides an embedded SQLite-backed DocumentStore. Documents
// live in a single table keyed by (collection, id) with the JSON payload as a
// blob; merge patches are computed in Go rather than in SQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hostelcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion.
var _ domain.DocumentStore = (*Store)(nil)

// Store persists documents to a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite file at path. An empty path
// defaults to ./hostelcore.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "hostelcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Load returns all documents of a collection ordered by id.
func (s *Store) Load(ctx context.Context, collection string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM documents WHERE collection = ? ORDER BY id`, collection)
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
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents (collection, id, payload) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET payload = excluded.payload`, collection, id, []byte(payload))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Update merges the patch into the stored payload inside a transaction so a
// concurrent Save cannot interleave between read and write. Absent ids are a
// no-op.
func (s *Store) Update(ctx context.Context, collection, id string, patch json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var payload []byte
	err = tx.QueryRowContext(ctx, `SELECT payload FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select document: %w", err)
	}
	merged, err := domain.MergePatch(payload, patch)
	if err != nil {
		return fmt.Errorf("merge document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET payload = ? WHERE collection = ? AND id = ?`, []byte(merged), collection, id); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// Delete removes a document; deleting an absent id succeeds.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
