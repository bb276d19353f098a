package bbbc005

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLockTimeout is the default timeout for acquiring the fetch lock.
const DefaultLockTimeout = 30 * time.Second

// Dataset layout below <root>.
const (
	// DataDirName is the folder below root that holds the dataset.
	DataDirName = "data"

	// MarkerFileName is the file whose presence marks a completed dataset.
	MarkerFileName = "data_paths.txt"

	// fetchLockName is the cross-process lock held during a fetch.
	fetchLockName = ".fetch.lock"
)

// storage resolves the dataset layout and performs filesystem operations.
type storage struct {
	// root is the directory below which data/ lives.
	root string

	// lockTimeout is the maximum duration to wait for lock acquisition.
	lockTimeout time.Duration
}

// newStorage creates a storage rooted at root. An empty root means the
// current directory.
func newStorage(root string) *storage {
	if root == "" {
		root = "."
	}
	return &storage{root: root, lockTimeout: DefaultLockTimeout}
}

// dataDir returns <root>/data.
func (s *storage) dataDir() string {
	return filepath.Join(s.root, DataDirName)
}

// markerPath returns <root>/data/data_paths.txt.
func (s *storage) markerPath() string {
	return filepath.Join(s.dataDir(), MarkerFileName)
}

// archivePath returns the download location of an archive.
func (s *storage) archivePath(archive string) string {
	return filepath.Join(s.dataDir(), archive)
}

// archiveDir returns the folder an archive extracts into, named after the
// archive file without its .zip suffix.
func (s *storage) archiveDir(archive string) string {
	return filepath.Join(s.dataDir(), strings.TrimSuffix(archive, ".zip"))
}

// complete reports whether data/ exists and holds the marker file.
func (s *storage) complete() bool {
	if info, err := os.Stat(s.dataDir()); err != nil || !info.IsDir() {
		return false
	}
	_, err := os.Stat(s.markerPath())
	return err == nil
}

// createDirs creates data/ and one folder per archive. A folder that already
// exists is not an error; any other failure is.
func (s *storage) createDirs(archives ...string) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("%w: failed to create root %s: %w", ErrStorageError, s.root, err)
	}

	dirs := []string{s.dataDir()}
	for _, a := range archives {
		dirs = append(dirs, s.archiveDir(a))
	}
	for _, dir := range dirs {
		if err := os.Mkdir(dir, 0755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: failed to create directory %s: %w", ErrStorageError, dir, err)
		}
	}
	return nil
}

// lockFetch acquires the cross-process fetch lock in data/.
// The caller must Unlock the returned lock.
func (s *storage) lockFetch() (*fileLock, error) {
	lock, err := newFileLock(filepath.Join(s.dataDir(), fetchLockName), s.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create fetch lock: %w", ErrStorageError, err)
	}
	if err := lock.Lock(); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("%w: another process is fetching into %s: %w", ErrStorageError, s.dataDir(), err)
	}
	return lock, nil
}

// removeFile deletes path.
func (s *storage) removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %w", ErrStorageError, path, err)
	}
	return nil
}

// atomicWrite writes data to a file using write-then-rename for atomicity.
func (s *storage) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", ErrStorageError, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %w", ErrStorageError, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to rename temp file: %w", ErrStorageError, err)
	}

	return nil
}
