package bbbc005

import (
	"fmt"
	"path/filepath"
)

// Split manifest file names written by WriteSplit.
const (
	TrainManifest = "train.tsv"
	ValManifest   = "val.tsv"
)

// WriteSplit writes the training and validation pairs of split to
// dir/train.tsv and dir/val.tsv, in the format of data_paths.txt.
func WriteSplit(dir string, split Split) error {
	s := newStorage(dir)

	subsets := []struct {
		file    string
		images  []string
		targets []string
	}{
		{TrainManifest, split.TrainImages, split.TrainTargets},
		{ValManifest, split.ValImages, split.ValTargets},
	}

	for _, sub := range subsets {
		if len(sub.images) != len(sub.targets) {
			return fmt.Errorf("%s: %d images, %d targets: %w", sub.file, len(sub.images), len(sub.targets), ErrLengthMismatch)
		}
		entries := make([]IndexEntry, len(sub.images))
		for i := range sub.images {
			entries[i] = IndexEntry{Image: sub.images[i], Target: sub.targets[i]}
		}

		data, err := encodePairs(entries)
		if err != nil {
			return err
		}
		if err := s.atomicWrite(filepath.Join(dir, sub.file), data); err != nil {
			return err
		}
	}
	return nil
}

// ReadSplitManifest loads one manifest written by WriteSplit.
func ReadSplitManifest(path string) ([]IndexEntry, error) {
	return readPairs(path)
}
