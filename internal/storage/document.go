package storage

import (
	"context"

	"github.com/vkarpovich/docvault/internal/models"
)

// DocumentStorage defines interface for document metadata persistence.
// The storage owns the metadata rows only; the file bytes live in the
// upload directory and are managed by the workflow layer.
type DocumentStorage interface {
	// CreateDocument creates a new document record
	CreateDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document by ID
	// Returns ErrDocumentNotFound if it doesn't exist
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all documents ordered by signed date,
	// newest first, with the owner username joined for display
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// UpdateDocument updates metadata fields and the stored filename
	// Returns ErrDocumentNotFound if it doesn't exist
	UpdateDocument(ctx context.Context, doc *models.Document) error

	// DeleteDocument deletes a document record by ID
	// Returns ErrDocumentNotFound if it doesn't exist
	DeleteDocument(ctx context.Context, id string) error
}
