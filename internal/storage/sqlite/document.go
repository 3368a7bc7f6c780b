package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
)

// CreateDocument creates a new document record
func (s *Storage) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, name, purpose, date_signed, filename, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.Purpose,
		doc.DateSigned.Format(models.DateFormat),
		doc.Filename,
		doc.UserID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document by ID
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT d.id, d.name, d.purpose, d.date_signed, d.filename, d.user_id, u.username, d.created_at, d.updated_at
		FROM documents d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = ?
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListDocuments returns all documents, newest signed date first
func (s *Storage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	query := `
		SELECT d.id, d.name, d.purpose, d.date_signed, d.filename, d.user_id, u.username, d.created_at, d.updated_at
		FROM documents d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.date_signed DESC, d.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*models.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}

// UpdateDocument updates metadata fields and the stored filename
func (s *Storage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents
		SET name = ?, purpose = ?, date_signed = ?, filename = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		doc.Name,
		doc.Purpose,
		doc.DateSigned.Format(models.DateFormat),
		doc.Filename,
		doc.UpdatedAt,
		doc.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

// DeleteDocument deletes a document record by ID
func (s *Storage) DeleteDocument(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	doc := &models.Document{}
	var dateSigned string

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Purpose,
		&dateSigned,
		&doc.Filename,
		&doc.UserID,
		&doc.Owner,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.DateSigned, err = time.Parse(models.DateFormat, dateSigned)
	if err != nil {
		return nil, fmt.Errorf("invalid date_signed for document %s: %w", doc.ID, err)
	}

	return doc, nil
}
