package emnist

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildArchive zips the given files under a single matlab/ directory,
// matching the remote archive's layout.
func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		w, err := zw.Create("matlab/" + name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDownloadExtractsAndFlattens(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"emnist-byclass.mat": "byclass stub",
		"emnist-letters.mat": "letters stub",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "emnist_data")
	require.NoError(t, download(dir, srv.URL))

	content, err := os.ReadFile(filepath.Join(dir, "emnist-byclass.mat"))
	require.NoError(t, err)
	require.Equal(t, "byclass stub", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "emnist-letters.mat"))
	require.NoError(t, err)
	require.Equal(t, "letters stub", string(content))

	_, err = os.Stat(filepath.Join(dir, "matlab"))
	require.True(t, os.IsNotExist(err), "matlab subdirectory should be removed")
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	err := download(t.TempDir(), srv.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestDownloadCorruptArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not a zip"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	err := download(dir, srv.URL)
	require.Error(t, err)

	// The failed download leaves the partial archive behind.
	_, statErr := os.Stat(filepath.Join(dir, archiveFilename))
	require.NoError(t, statErr)
}

func TestDownloadRejectsEscapingEntry(t *testing.T) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	w, err := zw.Create("../escape.mat")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	err = download(t.TempDir(), srv.URL)
	require.Error(t, err)
}

func TestLoadTriggersDownload(t *testing.T) {
	// A real matrix fixture served through the archive path exercises
	// the load-after-download flow end to end.
	fixtureDir := t.TempDir()
	writeMatFixture(t, fixtureDir,
		splitFixture{images: [][]byte{constImage(9)}, labels: []byte{4}},
		splitFixture{images: [][]byte{constImage(3)}, labels: []byte{1}})
	matBytes, err := os.ReadFile(filepath.Join(fixtureDir, MatFilename))
	require.NoError(t, err)

	archive := buildArchive(t, map[string]string{MatFilename: string(matBytes)})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "emnist_data")
	require.NoError(t, download(dir, srv.URL))

	ds, err := Load(dir, false)
	require.NoError(t, err)
	require.Equal(t, []int{4}, ds.Train.Labels)
	require.Equal(t, []int{1}, ds.Test.Labels)
}
