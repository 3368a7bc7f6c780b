package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	return store
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_SaveAndPath(t *testing.T) {
	store := setupTestStore(t)

	err := store.Save("report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	path, err := store.Path("report.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestStore_Save_RefusesOverwrite(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Save("report.pdf", strings.NewReader("first")))

	// Same stored name again must fail, not overwrite
	err := store.Save("report.pdf", strings.NewReader("second"))
	assert.Error(t, err)

	path, err := store.Path("report.pdf")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestStore_Save_RejectsUnsafeName(t *testing.T) {
	store := setupTestStore(t)

	err := store.Save("../escape.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	// nothing may appear outside the directory
	_, statErr := os.Stat(filepath.Join(store.Dir(), "..", "escape.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_Remove(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Save("report.pdf", strings.NewReader("x")))
	require.NoError(t, store.Remove("report.pdf"))

	_, err := store.Path("report.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Removing an already-missing file is not an error
	assert.NoError(t, store.Remove("report.pdf"))
}

func TestStore_Path_Errors(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name    string
		arg     string
		wantErr error
	}{
		{name: "unknown name", arg: "missing.pdf", wantErr: ErrFileNotFound},
		{name: "empty name", arg: "", wantErr: ErrInvalidName},
		{name: "traversal", arg: "../../etc/passwd", wantErr: ErrInvalidName},
		{name: "separator", arg: "a/b.pdf", wantErr: ErrInvalidName},
		{name: "dot dot", arg: "..", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Path(tt.arg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
