package storage_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jvargast/newsletter-fisuc/storage"
)

// pngBytes is a minimal PNG signature plus header padding, enough for MIME
// sniffing to identify image/png.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 24)...)

func createFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func TestMediaStoreSave(t *testing.T) {
	t.Parallel()

	store, err := storage.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	t.Run("valid png", func(t *testing.T) {
		t.Parallel()
		name, err := store.Save(createFileHeader(t, "logo.PNG", pngBytes))
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}\.png$`), name)

		path, ok := store.Resolve(name)
		require.True(t, ok)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
	})

	t.Run("extension falls back to sniffed type", func(t *testing.T) {
		t.Parallel()
		name, err := store.Save(createFileHeader(t, "noext", pngBytes))
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`\.png$`), name)
	})

	t.Run("non-image rejected", func(t *testing.T) {
		t.Parallel()
		_, err := store.Save(createFileHeader(t, "notes.txt", []byte("plain text, not an image")))
		assert.ErrorIs(t, err, storage.ErrNotAnImage)
	})

	t.Run("oversized rejected", func(t *testing.T) {
		t.Parallel()
		big := make([]byte, storage.MaxUploadBytes+1)
		copy(big, pngBytes)
		_, err := store.Save(createFileHeader(t, "big.png", big))
		assert.ErrorIs(t, err, storage.ErrTooLarge)
	})

	t.Run("nil header rejected", func(t *testing.T) {
		t.Parallel()
		_, err := store.Save(nil)
		assert.Error(t, err)
	})
}

func TestMediaStoreListDeleteResolve(t *testing.T) {
	t.Parallel()

	store, err := storage.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save(createFileHeader(t, "logo.png", pngBytes))
	require.NoError(t, err)

	t.Run("list includes saved asset", func(t *testing.T) {
		assets, err := store.List()
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, name, assets[0].Name)
		assert.NotEmpty(t, assets[0].Path)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, store.Delete(name))

		_, ok := store.Resolve(name)
		assert.False(t, ok)

		err := store.Delete(name)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMediaStoreRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, err := storage.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b.png", ".hidden"} {
		assert.ErrorIs(t, store.Delete(name), storage.ErrInvalidName, "name %q", name)

		_, ok := store.Resolve(name)
		assert.False(t, ok, "name %q", name)
	}
}
