package emnist

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveURL is the fixed location of the EMNIST matlab archive: a zip
// holding a single `matlab/` directory with the matrix files.
const ArchiveURL = "http://www.itl.nist.gov/iaui/vip/cs_links/EMNIST/matlab.zip"

// archiveFilename is the local name the downloaded zip is saved under.
const archiveFilename = "emnist_matlab.zip"

// downloadChunkSize bounds the copy buffer while streaming the archive
// to disk.
const downloadChunkSize = 32 * 1024

// Download fetches the EMNIST archive into dir, extracts it, and moves
// the contents of the archive's `matlab/` subdirectory up into dir.
// Every network or filesystem failure is fatal and propagates; a failed
// download may leave a partial zip behind.
func Download(dir string) error {
	return download(dir, ArchiveURL)
}

func download(dir, url string) error {
	slog.Info("data not found, starting EMNIST download", "url", url)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create target folder: %w", err)
	}

	zipPath := filepath.Join(dir, archiveFilename)
	if err := fetchArchive(url, zipPath); err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}

	slog.Info("download successful, extracting and moving files", "archive", zipPath)

	if err := extractArchive(zipPath, dir); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	if err := flattenSubdir(dir, "matlab"); err != nil {
		return fmt.Errorf("move matlab files: %w", err)
	}
	return nil
}

// fetchArchive streams the remote archive to path in fixed-size chunks.
func fetchArchive(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// Plain io.Writer wrapper keeps CopyBuffer from switching to
	// os.File's ReadFrom, which would bypass the bounded buffer.
	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(struct{ io.Writer }{f}, resp.Body, buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// extractArchive unpacks the zip into dir, preserving its internal
// directory layout.
func extractArchive(zipPath, dir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		dest := filepath.Join(dir, filepath.Clean(f.Name))
		if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes target folder", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = rc.Close()
	}()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// flattenSubdir moves every file of dir/sub up into dir and removes the
// then-empty subdirectory.
func flattenSubdir(dir, sub string) error {
	subPath := filepath.Join(dir, sub)
	entries, err := os.ReadDir(subPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(subPath, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return os.Remove(subPath)
}
