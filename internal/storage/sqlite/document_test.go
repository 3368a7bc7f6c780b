package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
)

func createTestDocument(t *testing.T, s *Storage, userID, name, dateSigned string) *models.Document {
	t.Helper()

	date, err := time.Parse(models.DateFormat, dateSigned)
	require.NoError(t, err)

	now := time.Now()
	doc := &models.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Purpose:    "test purpose",
		DateSigned: date,
		Filename:   name + ".pdf",
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateDocument(context.Background(), doc))

	return doc
}

func TestDocumentStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, s, "owner")
	doc := createTestDocument(t, s, user.ID, "lease", "2024-03-15")

	retrieved, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, "lease", retrieved.Name)
	assert.Equal(t, "test purpose", retrieved.Purpose)
	assert.Equal(t, "2024-03-15", retrieved.DateSigned.Format(models.DateFormat))
	assert.Equal(t, "lease.pdf", retrieved.Filename)
	assert.Equal(t, user.ID, retrieved.UserID)
	assert.Equal(t, "owner", retrieved.Owner)
}

func TestDocumentStorage_GetDocument_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetDocument(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestDocumentStorage_ListDocuments_OrderedByDateDesc(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, s, "owner")
	createTestDocument(t, s, user.ID, "oldest", "2022-01-10")
	createTestDocument(t, s, user.ID, "newest", "2024-06-01")
	createTestDocument(t, s, user.ID, "middle", "2023-11-20")

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "newest", docs[0].Name)
	assert.Equal(t, "middle", docs[1].Name)
	assert.Equal(t, "oldest", docs[2].Name)

	// Owner username is joined for display
	for _, d := range docs {
		assert.Equal(t, "owner", d.Owner)
	}
}

func TestDocumentStorage_ListDocuments_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStorage_UpdateDocument(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, s, "owner")
	doc := createTestDocument(t, s, user.ID, "draft", "2024-01-01")

	newDate, err := time.Parse(models.DateFormat, "2024-02-02")
	require.NoError(t, err)

	doc.Name = "final"
	doc.Purpose = "signed version"
	doc.DateSigned = newDate
	doc.Filename = "final.pdf"
	doc.UpdatedAt = time.Now()

	require.NoError(t, s.UpdateDocument(ctx, doc))

	retrieved, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", retrieved.Name)
	assert.Equal(t, "signed version", retrieved.Purpose)
	assert.Equal(t, "2024-02-02", retrieved.DateSigned.Format(models.DateFormat))
	assert.Equal(t, "final.pdf", retrieved.Filename)
}

func TestDocumentStorage_UpdateDocument_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestUser(t, s, "owner")

	doc := &models.Document{
		ID:         uuid.New().String(),
		Name:       "ghost",
		Purpose:    "missing",
		DateSigned: time.Now(),
		Filename:   "ghost.pdf",
		UpdatedAt:  time.Now(),
	}
	err := s.UpdateDocument(ctx, doc)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestDocumentStorage_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, s, "owner")
	doc := createTestDocument(t, s, user.ID, "doomed", "2024-05-05")

	require.NoError(t, s.DeleteDocument(ctx, doc.ID))

	_, err := s.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	err = s.DeleteDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}
