package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "products"))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "thumb.png", strings.NewReader("png-bytes")))

	rc, err := store.Open(ctx, "thumb.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "thumb.png"))
	_, err = store.Open(ctx, "thumb.png")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, store.Delete(ctx, "thumb.png"), ErrNotExist)
}

func TestLocalStoreRejectsPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../escape.png", "a/b.png", "", "."} {
		assert.Error(t, store.Save(context.Background(), name, strings.NewReader("x")), name)
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), Options{Driver: "local", UploadDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), Options{Driver: "ftp"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Driver: "s3"}, zerolog.Nop())
	assert.Error(t, err, "bucket is required")
}
