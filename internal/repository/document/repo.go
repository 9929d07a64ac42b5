// Package document persists documents in a relational store (SQLite via
// database/sql). Timestamps are stored as ISO-8601 strings.
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	in_vector_db INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_title ON documents(title);
`

// Repo is the relational document repository.
type Repo struct {
	db *sql.DB
}

// Open opens the SQLite database at path and returns a repository.
func Open(path string) (*Repo, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Repo{db: sqlDB}, nil
}

// Close closes the underlying database.
func (r *Repo) Close() error {
	return r.db.Close() //nolint:wrapcheck // delegating to database/sql
}

// Ping checks database availability.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Migrate creates the documents table if missing.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

// Create inserts a document and returns it with its assigned id.
func (r *Repo) Create(ctx context.Context, title, content string, inVectorDB bool) (domain.Document, error) {
	now := timeNowISO()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (title, content, in_vector_db, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		title, content, boolToInt(inVectorDB), now, now,
	)
	if err != nil {
		return domain.Document{}, fmt.Errorf("insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Document{}, fmt.Errorf("last insert id: %w", err)
	}

	return domain.Document{
		ID:         id,
		Title:      title,
		Content:    content,
		InVectorDB: inVectorDB,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Get returns one document by id, or domain.ErrDocumentNotFound.
func (r *Repo) Get(ctx context.Context, id int64) (domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, in_vector_db, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("get document %d: %w", id, err)
	}
	return doc, nil
}

// List returns all documents ordered by id.
func (r *Repo) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, in_vector_db, created_at, updated_at
		 FROM documents ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Patch applies a partial update and returns the updated document.
func (r *Repo) Patch(ctx context.Context, id int64, p domain.DocumentPatch) (domain.Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}

	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	doc.UpdatedAt = timeNowISO()

	_, err = r.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		doc.Title, doc.Content, doc.UpdatedAt, id,
	)
	if err != nil {
		return domain.Document{}, fmt.Errorf("update document %d: %w", id, err)
	}
	return doc, nil
}

// SetInVectorDB marks whether the document's vector is stored in the index.
func (r *Repo) SetInVectorDB(ctx context.Context, id int64, inVectorDB bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET in_vector_db = ?, updated_at = ? WHERE id = ?`,
		boolToInt(inVectorDB), timeNowISO(), id,
	)
	if err != nil {
		return fmt.Errorf("mark document %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document, or returns domain.ErrDocumentNotFound.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var doc domain.Document
	var inVec int
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &inVec, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return domain.Document{}, err //nolint:wrapcheck // callers add context
	}
	doc.InVectorDB = inVec != 0
	return doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeNowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
