package docs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpovich/docvault/internal/files"
	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
	sqlitestorage "github.com/vkarpovich/docvault/internal/storage/sqlite"
	"github.com/vkarpovich/docvault/internal/validation"
)

type testEnv struct {
	svc    *Service
	store  *sqlitestorage.Storage
	fstore *files.Store
	userID string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()

	store, err := sqlitestorage.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fstore, err := files.NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     "director1",
		PasswordHash: "salt$key",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateUser(ctx, user))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		svc:    NewService(logger, store, fstore),
		store:  store,
		fstore: fstore,
		userID: user.ID,
	}
}

func validFields() validation.DocumentFields {
	return validation.DocumentFields{
		Name:       "Lease Agreement",
		Purpose:    "Office rental",
		DateSigned: "2024-03-15",
	}
}

func (e *testEnv) listStoredFiles(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(e.fstore.Dir())
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("pdf bytes"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	// Record exists with the stored filename
	retrieved, err := env.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lease Agreement", retrieved.Name)
	assert.Equal(t, "lease.pdf", retrieved.Filename)
	assert.Equal(t, env.userID, retrieved.UserID)

	// Stored file is present and readable
	path, err := env.fstore.Path(retrieved.Filename)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestService_Upload_TrimsMetadata(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields: validation.DocumentFields{
			Name:       "  Lease  ",
			Purpose:    " rental ",
			DateSigned: "2024-03-15",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lease", doc.Name)
	assert.Equal(t, "rental", doc.Purpose)
}

func TestService_Upload_NoFile(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	_, err := env.svc.Upload(ctx, env.userID, Upload{Fields: validFields()})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Upload_DisallowedExtension_NothingWritten(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	_, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "malware.exe",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Rejected before any file was written
	assert.Empty(t, env.listStoredFiles(t))

	docs, err := env.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestService_Upload_MetadataFailure_RollsBackFile(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		fields validation.DocumentFields
	}{
		{
			name: "missing name",
			fields: validation.DocumentFields{
				Purpose:    "rental",
				DateSigned: "2024-03-15",
			},
		},
		{
			name: "impossible date",
			fields: validation.DocumentFields{
				Name:       "Lease",
				Purpose:    "rental",
				DateSigned: "2024-13-40",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Upload(ctx, env.userID, Upload{
				Filename: "lease.pdf",
				File:     strings.NewReader("x"),
				Fields:   tt.fields,
			})
			assert.ErrorIs(t, err, ErrValidation)

			// No record and no file remains
			docs, err := env.svc.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, docs)
			assert.Empty(t, env.listStoredFiles(t))
		})
	}
}

func TestService_Upload_DuplicateOriginalNames(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	first, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "report.pdf",
		File:     strings.NewReader("one"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	second, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "report.pdf",
		File:     strings.NewReader("two"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	// Both succeed with distinct stored names
	assert.Equal(t, "report.pdf", first.Filename)
	assert.Equal(t, "report_1.pdf", second.Filename)

	for _, doc := range []*models.Document{first, second} {
		_, err := env.fstore.Path(doc.Filename)
		assert.NoError(t, err)
	}
}

func TestService_Edit_Metadata(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	updated, err := env.svc.Edit(ctx, doc.ID, validation.DocumentFields{
		Name:       "Amended Lease",
		Purpose:    "Extension",
		DateSigned: "2024-06-01",
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "Amended Lease", updated.Name)
	assert.Equal(t, "Extension", updated.Purpose)
	assert.Equal(t, "2024-06-01", updated.DateSigned.Format(models.DateFormat))
	// file untouched
	assert.Equal(t, "lease.pdf", updated.Filename)
}

func TestService_Edit_ReplaceFile(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("old"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	updated, err := env.svc.Edit(ctx, doc.ID, validFields(), strings.NewReader("new"), "signed.pdf")
	require.NoError(t, err)

	// New file exists and is referenced
	assert.Equal(t, "signed.pdf", updated.Filename)
	path, err := env.fstore.Path("signed.pdf")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// Old file no longer exists
	_, err = env.fstore.Path("lease.pdf")
	assert.ErrorIs(t, err, files.ErrFileNotFound)
}

func TestService_Edit_ValidationFailure_LeavesEverythingUntouched(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	_, err = env.svc.Edit(ctx, doc.ID, validation.DocumentFields{
		Name:       "Amended",
		Purpose:    "Extension",
		DateSigned: "not-a-date",
	}, strings.NewReader("new"), "replacement.pdf")
	assert.ErrorIs(t, err, ErrValidation)

	// Record unchanged, old file in place, replacement never written
	unchanged, err := env.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lease Agreement", unchanged.Name)
	assert.Equal(t, "lease.pdf", unchanged.Filename)

	_, err = env.fstore.Path("replacement.pdf")
	assert.ErrorIs(t, err, files.ErrFileNotFound)
}

func TestService_Edit_BadExtension(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	_, err = env.svc.Edit(ctx, doc.ID, validFields(), strings.NewReader("evil"), "evil.exe")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []string{"lease.pdf"}, env.listStoredFiles(t))
}

func TestService_Edit_NotFound(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	_, err := env.svc.Edit(ctx, uuid.New().String(), validFields(), nil, "")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, doc.ID))

	_, err = env.svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
	_, err = env.fstore.Path("lease.pdf")
	assert.ErrorIs(t, err, files.ErrFileNotFound)
}

func TestService_Delete_MissingFileIsNotAnError(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	doc, err := env.svc.Upload(ctx, env.userID, Upload{
		Filename: "lease.pdf",
		File:     strings.NewReader("x"),
		Fields:   validFields(),
	})
	require.NoError(t, err)

	// File vanished out of band
	require.NoError(t, os.Remove(filepath.Join(env.fstore.Dir(), "lease.pdf")))

	require.NoError(t, env.svc.Delete(ctx, doc.ID))

	_, err = env.svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestService_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	err := env.svc.Delete(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}
