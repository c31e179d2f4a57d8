package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/eventcart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCartSlot(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cart.json")

	slot := repository.NewFileCartSlot(path)

	_, found, err := slot.ReadCartBlob(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, slot.WriteCartBlob(ctx, []byte(`[{"id":1,"qty":2}]`)))
	require.NoError(t, slot.WriteCartBlob(ctx, []byte(`[{"id":1,"qty":3}]`)))

	blob, found, err := repository.NewFileCartSlot(path).ReadCartBlob(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":1,"qty":3}]`, string(blob))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileCartSlotWriteFailure(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	// a directory where the file should be makes the rename fail
	path := filepath.Join(dir, "cart.json")
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0o600))

	err := repository.NewFileCartSlot(path).WriteCartBlob(ctx, []byte(`[]`))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileCartSlotCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	slot := repository.NewFileCartSlot(filepath.Join(t.TempDir(), "cart.json"))

	_, _, err := slot.ReadCartBlob(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, slot.WriteCartBlob(ctx, []byte(`[]`)), context.Canceled)
}
