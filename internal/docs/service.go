package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vkarpovich/docvault/internal/files"
	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
	"github.com/vkarpovich/docvault/internal/validation"
)

// ErrValidation marks user-correctable input failures: missing file,
// disallowed extension, missing or malformed metadata. Handlers map it
// to a client error; wrapped messages carry the detail.
var ErrValidation = errors.New("validation failed")

// Upload carries one multipart upload through the workflow.
type Upload struct {
	Filename string // original filename as supplied by the uploader
	File     io.Reader
	Fields   validation.DocumentFields
}

// Service orchestrates file writes and metadata persistence for the
// upload, edit and delete workflows. It is the sole owner of the
// ordering rules: a file write must never outlive a failed record
// creation, and a record must never point at a file that was already
// removed.
type Service struct {
	logger *slog.Logger
	docs   storage.DocumentStorage
	files  *files.Store
}

// NewService creates a new document workflow service
func NewService(logger *slog.Logger, docStorage storage.DocumentStorage, fileStore *files.Store) *Service {
	return &Service{
		logger: logger,
		docs:   docStorage,
		files:  fileStore,
	}
}

// List returns all documents, newest signed date first.
func (s *Service) List(ctx context.Context) ([]*models.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// Get returns one document by id.
// Returns storage.ErrDocumentNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.GetDocument(ctx, id)
}

// Upload validates and stores a new document. The extension check runs
// before any file is written; metadata validation runs after the write
// and rolls the file back on failure.
func (s *Service) Upload(ctx context.Context, userID string, up Upload) (*models.Document, error) {
	if up.File == nil || up.Filename == "" {
		return nil, fmt.Errorf("%w: no file attached", ErrValidation)
	}

	if err := validation.ValidateExtension(up.Filename); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	storedName, err := s.files.ResolveUniqueName(up.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stored name: %w", err)
	}

	if err := s.files.Save(storedName, up.File); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	date, err := validation.ValidateDocumentFields(up.Fields)
	if err != nil {
		// the file write must not outlive the failed record creation
		s.removeQuietly(ctx, storedName)
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(up.Fields.Name),
		Purpose:    strings.TrimSpace(up.Fields.Purpose),
		DateSigned: date,
		Filename:   storedName,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		s.removeQuietly(ctx, storedName)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.InfoContext(ctx, "document uploaded",
		slog.String("document_id", doc.ID),
		slog.String("stored_filename", storedName))

	return doc, nil
}

// Edit updates a document's metadata and optionally replaces its file.
// Metadata is validated before anything is touched. A replacement file
// is written and the record repointed to it before the old file is
// removed, so a failure in between can leak an old file but never
// orphan the record.
func (s *Service) Edit(ctx context.Context, id string, fields validation.DocumentFields, file io.Reader, filename string) (*models.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := validation.ValidateDocumentFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	oldName := ""
	if file != nil && filename != "" {
		if err := validation.ValidateExtension(filename); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}

		storedName, err := s.files.ResolveUniqueName(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stored name: %w", err)
		}

		if err := s.files.Save(storedName, file); err != nil {
			return nil, fmt.Errorf("failed to store replacement file: %w", err)
		}

		oldName = doc.Filename
		doc.Filename = storedName
	}

	doc.Name = strings.TrimSpace(fields.Name)
	doc.Purpose = strings.TrimSpace(fields.Purpose)
	doc.DateSigned = date
	doc.UpdatedAt = time.Now()

	if err := s.docs.UpdateDocument(ctx, doc); err != nil {
		if oldName != "" {
			// record still points at the old file; drop the new one
			s.removeQuietly(ctx, doc.Filename)
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	// old file removed only after the record points at the new one
	if oldName != "" && oldName != doc.Filename {
		s.removeQuietly(ctx, oldName)
	}

	s.logger.InfoContext(ctx, "document updated",
		slog.String("document_id", doc.ID),
		slog.Bool("file_replaced", oldName != ""))

	return doc, nil
}

// Delete removes the stored file (best effort) and then the record.
// Ordering favors avoiding a dangling file reference over avoiding an
// orphaned file on disk.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	s.removeQuietly(ctx, doc.Filename)

	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.InfoContext(ctx, "document deleted", slog.String("document_id", id))

	return nil
}

// removeQuietly deletes a stored file, swallowing errors. Used for
// cleanup paths where the metadata invariant is already satisfied.
func (s *Service) removeQuietly(ctx context.Context, name string) {
	if err := s.files.Remove(name); err != nil {
		s.logger.WarnContext(ctx, "failed to remove stored file",
			slog.String("stored_filename", name),
			slog.Any("error", err))
	}
}
