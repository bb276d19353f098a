package bbbc005

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// layoutDataset creates empty files under the extracted archive folders.
func layoutDataset(t *testing.T, root string, images, masks []string) {
	t.Helper()
	s := newStorage(root)
	for dir, names := range map[string][]string{
		s.archiveDir(ImagesArchive):      images,
		s.archiveDir(GroundTruthArchive): masks,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
	}
}

func TestBuildIndex(t *testing.T) {
	root := t.TempDir()
	layoutDataset(t, root,
		[]string{imageA, imageB, imageC, "SIMCEPImages_D01_C5_F1_s01_w1.TIF", "notes.txt", "unparsable.tif"},
		[]string{imageA, imageC, "readme.md"},
	)

	entries, err := BuildIndex(root)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	s := newStorage(root)
	img := func(name string) string { return filepath.Join(s.archiveDir(ImagesArchive), name) }
	mask := func(name string) string { return filepath.Join(s.archiveDir(GroundTruthArchive), name) }

	// ReadDir order puts the F16 variant before F1.
	want := []IndexEntry{
		{Image: img(imageB), Target: mask(imageA)},
		{Image: img(imageA), Target: mask(imageA)},
		{Image: img(imageC), Target: mask(imageC)},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("BuildIndex() =\n%v\nwant\n%v", entries, want)
	}
}

func TestBuildIndexPrefersExactName(t *testing.T) {
	root := t.TempDir()
	// Both blur levels have their own mask and share one ImageID.
	layoutDataset(t, root, []string{imageA, imageB}, []string{imageA, imageB})

	entries, err := BuildIndex(root)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("BuildIndex() returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if filepath.Base(e.Image) != filepath.Base(e.Target) {
			t.Errorf("%s paired with %s, want its own mask", filepath.Base(e.Image), filepath.Base(e.Target))
		}
	}
}

func TestBuildIndexNotDownloaded(t *testing.T) {
	_, err := BuildIndex(t.TempDir())
	if !errors.Is(err, ErrNotDownloaded) {
		t.Errorf("BuildIndex() error = %v, want ErrNotDownloaded", err)
	}
}

func TestWriteReadIndex(t *testing.T) {
	root := t.TempDir()
	entries := []IndexEntry{
		{Image: "data/BBBC005_v1_images/" + imageA, Target: "data/BBBC005_v1_ground_truth/" + imageA},
		{Image: "data/BBBC005_v1_images/" + imageB, Target: "data/BBBC005_v1_ground_truth/" + imageA},
	}

	if err := WriteIndex(root, entries); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, "data", MarkerFileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "image\ttarget" {
		t.Errorf("header = %q, want %q", lines[0], "image\ttarget")
	}
	if len(lines) != 3 {
		t.Errorf("marker has %d lines, want 3", len(lines))
	}

	got, err := ReadIndex(root)
	if err != nil {
		t.Fatalf("ReadIndex() error = %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("ReadIndex() = %v, want %v", got, entries)
	}
}

func TestReadIndexMissing(t *testing.T) {
	_, err := ReadIndex(t.TempDir())
	if !errors.Is(err, ErrNotDownloaded) {
		t.Errorf("ReadIndex() error = %v, want ErrNotDownloaded", err)
	}
}

func TestIndexThenSplit(t *testing.T) {
	root := t.TempDir()
	var images, masks []string
	for _, cells := range []string{"C1", "C14", "C27"} {
		for s := 1; s <= 10; s++ {
			name := "SIMCEPImages_A01_" + cells + "_F1_s" + twoDigits(s) + "_w1.TIF"
			images = append(images, name)
			masks = append(masks, name)
		}
	}
	layoutDataset(t, root, images, masks)

	entries, err := BuildIndex(root)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if len(entries) != 30 {
		t.Fatalf("BuildIndex() = %d entries, want 30", len(entries))
	}

	imgs := make([]string, len(entries))
	tars := make([]string, len(entries))
	for i, e := range entries {
		imgs[i], tars[i] = e.Image, e.Target
	}
	split, err := SplitData(imgs, tars, DefaultSeed)
	if err != nil {
		t.Fatalf("SplitData() error = %v", err)
	}
	if len(split.ValImages) != 3 {
		t.Errorf("len(ValImages) = %d, want 3", len(split.ValImages))
	}
	for i := range split.ValImages {
		if ImageName(split.ValImages[i]) != ImageName(split.ValTargets[i]) {
			t.Errorf("validation pair %d misaligned", i)
		}
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
