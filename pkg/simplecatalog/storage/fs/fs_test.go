package fs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	fsstorage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/fs"
)

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.Error(t, err)
}

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, backend.Upload(ctx, "key-1", strings.NewReader("payload")))

	rc, err := backend.Download(ctx, "key-1")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))

	require.NoError(t, backend.Delete(ctx, "key-1"))

	_, err = backend.Download(ctx, "key-1")
	assert.ErrorIs(t, err, simplecatalog.ErrBlobNotFound)
	err = backend.Delete(ctx, "key-1")
	assert.ErrorIs(t, err, simplecatalog.ErrBlobNotFound)
}

func TestPublicURL(t *testing.T) {
	ctx := context.Background()

	private, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	_, err = private.PublicURL(ctx, "key")
	assert.Error(t, err)

	public, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir(), URLPrefix: "/products"})
	require.NoError(t, err)
	url, err := public.PublicURL(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "/products/key", url)
}
