package bbbc005

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/tsv"
)

// BuildIndex pairs every extracted image below root with its ground-truth
// mask. A mask with the same file name is preferred; otherwise the mask whose
// ImageID matches is used, so every blur level of an image shares one mask.
// Images without a mask are left out. Entries are ordered by image path.
//
// Returns ErrNotDownloaded if either archive folder is missing.
func BuildIndex(root string) ([]IndexEntry, error) {
	s := newStorage(root)

	images, err := listImages(s.archiveDir(ImagesArchive))
	if err != nil {
		return nil, err
	}
	masks, err := listImages(s.archiveDir(GroundTruthArchive))
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(masks))
	byID := make(map[string]string, len(masks))
	for _, m := range masks {
		name := ImageName(filepath.Base(m))
		byName[name] = m
		if id, err := ImageID(name); err == nil {
			if _, ok := byID[id]; !ok {
				byID[id] = m
			}
		}
	}

	var entries []IndexEntry
	for _, img := range images {
		name := ImageName(filepath.Base(img))
		if m, ok := byName[name]; ok {
			entries = append(entries, IndexEntry{Image: img, Target: m})
			continue
		}
		id, err := ImageID(name)
		if err != nil {
			continue
		}
		if m, ok := byID[id]; ok {
			entries = append(entries, IndexEntry{Image: img, Target: m})
		}
	}
	return entries, nil
}

// listImages returns the TIFF files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDownloaded)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageError, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".tif", ".tiff":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// WriteIndex records entries in <root>/data/data_paths.txt, the marker that
// makes later fetches a no-op. The file is replaced atomically.
func WriteIndex(root string, entries []IndexEntry) error {
	data, err := encodePairs(entries)
	if err != nil {
		return err
	}
	s := newStorage(root)
	return s.atomicWrite(s.markerPath(), data)
}

// ReadIndex loads the entries written by WriteIndex.
// Returns ErrNotDownloaded if the marker file does not exist.
func ReadIndex(root string) ([]IndexEntry, error) {
	path := newStorage(root).markerPath()
	entries, err := readPairs(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDownloaded)
	}
	return entries, err
}

// readPairs loads a TSV file produced by encodePairs.
func readPairs(path string) ([]IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageError, err)
	}
	defer f.Close()

	return decodePairs(f, path)
}

// encodePairs renders entries as a two-column TSV with an image/target header.
func encodePairs(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := tsv.NewWriter(&buf)

	w.WriteString("image")
	w.WriteString("target")
	if err := w.EndLine(); err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	for _, e := range entries {
		w.WriteString(e.Image)
		w.WriteString(e.Target)
		if err := w.EndLine(); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Image, err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("encoding pairs: %w", err)
	}
	return buf.Bytes(), nil
}

// decodePairs parses the TSV produced by encodePairs. name labels errors.
func decodePairs(r io.Reader, name string) ([]IndexEntry, error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true

	var entries []IndexEntry
	for {
		var e IndexEntry
		err := tr.Read(&e)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", ErrStorageError, name, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
