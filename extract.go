package bbbc005

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractZip unpacks every entry of the archive at src whose name starts with
// prefix into dest, keeping entry paths. An empty prefix extracts everything.
// The progressFn is called with each entry name before it is written.
// It returns the number of files written.
func extractZip(ctx context.Context, src, dest, prefix string, progressFn func(name string)) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s: %w", ErrArchiveError, src, err)
	}
	defer r.Close()

	files := 0
	for _, f := range r.File {
		select {
		case <-ctx.Done():
			return files, ctx.Err()
		default:
		}

		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}

		target, err := entryPath(dest, f.Name)
		if err != nil {
			return files, err
		}

		if progressFn != nil {
			progressFn(f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, fmt.Errorf("%w: failed to create directory %s: %w", ErrStorageError, target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return files, fmt.Errorf("%w: failed to create directory for %s: %w", ErrStorageError, f.Name, err)
		}
		if err := writeEntry(f, target); err != nil {
			return files, err
		}
		files++
	}

	return files, nil
}

// entryPath resolves an entry name below dest, rejecting names that escape it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: entry %q escapes destination", ErrArchiveError, name)
	}
	return target, nil
}

// writeEntry copies one archive entry to target.
func writeEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening entry %s: %w", ErrArchiveError, f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", ErrStorageError, target, err)
	}

	written, err := io.Copy(out, rc)
	if err != nil {
		out.Close()
		return fmt.Errorf("%w: extracting %s: %w", ErrArchiveError, f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrStorageError, target, err)
	}
	if uint64(written) != f.UncompressedSize64 {
		return fmt.Errorf("%w: entry %s: wrote %d bytes, expected %d", ErrArchiveError, f.Name, written, f.UncompressedSize64)
	}
	return nil
}
