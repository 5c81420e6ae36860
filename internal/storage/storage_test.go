package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore_Unit(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs, "http://localhost:5000/uploads/")
	ctx := context.Background()

	filePath := "products/u1/photo.png"
	fileContent := "not really a png"

	t.Run("Save", func(t *testing.T) {
		bytesWritten, err := store.Save(ctx, filePath, "image/png", bytes.NewReader([]byte(fileContent)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Get", func(t *testing.T) {
		file, err := store.Get(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("URL", func(t *testing.T) {
		assert.Equal(t, "http://localhost:5000/uploads/products/u1/photo.png", store.URL(filePath))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, filePath))

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.False(t, exists, "file should not exist after deleting")

		assert.NoError(t, store.Delete(ctx, filePath), "deleting twice is not an error")
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "path/to/nothing.txt")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = store.Get(ctx, "products")
		assert.True(t, errors.Is(err, ErrNotFound), "directories are not objects")
	})

	t.Run("unsafe paths", func(t *testing.T) {
		for _, p := range []string{"", "/etc/passwd", "../x", "a/../../x", "a\\b", "a//b", "./a"} {
			_, err := store.Save(ctx, p, "", bytes.NewReader(nil))
			assert.True(t, errors.Is(err, ErrInvalidPath), "path %q", p)
			_, err = store.Get(ctx, p)
			assert.True(t, errors.Is(err, ErrInvalidPath), "path %q", p)
		}
	})
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:5000/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a/b.txt", "text/plain", bytes.NewBufferString("hi"))
	require.NoError(t, err)

	data, err := afero.ReadFile(afero.NewOsFs(), dir+"/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}
