package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcatch/pkg/models"
)

func testRecord(url string) models.DownloadRecord {
	return models.DownloadRecord{
		URL:       url,
		Path:      "/downloads/clip.mp4",
		Success:   true,
		Timestamp: time.Now().UTC(),
		Size:      1024,
	}
}

func TestOpenFileStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	assert.Empty(t, store.List())
	assert.False(t, store.Exists("https://platform.example/@user/video/1"))
}

func TestInsertAndExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	url := "https://platform.example/@user/video/1"
	require.NoError(t, store.Insert(testRecord(url)))

	assert.True(t, store.Exists(url))
	assert.Len(t, store.List(), 1)

	// The file is written through immediately.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	url := "https://platform.example/@user/video/1"
	require.NoError(t, store.Insert(testRecord(url)))

	reloaded, err := OpenFileStore(path)
	require.NoError(t, err)

	assert.True(t, reloaded.Exists(url))
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, url, reloaded.List()[0].URL)
	assert.Equal(t, int64(1024), reloaded.List()[0].Size)
}

func TestOpenFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestInsertCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "catalog.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Insert(testRecord("https://platform.example/@u/video/2")))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestListReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Insert(testRecord("https://platform.example/@u/video/3")))

	list := store.List()
	list[0].URL = "mutated"

	assert.Equal(t, "https://platform.example/@u/video/3", store.List()[0].URL)
}
