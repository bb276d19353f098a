package bbbc005

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Filename grammar. Every BBBC005 naming rule is declared here.
//
//	SIMCEPImages_A05_C18_F1_s05_w1.TIF
//	             |  |   |   |   `- w: stain channel (optional)
//	             |  |   |   `----- s: sample
//	             |  |   `--------- F: focus blur level
//	             |  `------------- C: cell count
//	             `---------------- row letter + column digits
var (
	// idPattern captures "<column>_C<cells>" and "s<sample>".
	idPattern = regexp.MustCompile(`_\w(\d+_C\d+)_F\d+_(s\d+)`)

	// cellsPattern captures the cell count. The leading \w+ is greedy, so the
	// last qualifying _C<digits>_ token wins.
	cellsPattern = regexp.MustCompile(`\w+_\w+\d+_C(\d+)_`)

	// namePattern captures every field at once.
	namePattern = regexp.MustCompile(`_([A-Za-z])(\d+)_C(\d+)_F(\d+)_s(\d+)(?:_w(\d+))?`)
)

// ImageID returns the image identifier regardless of the blur level,
// e.g. "05_C18_s05" for "SIMCEPImages_A05_C18_F1_s05_w1".
// Returns ErrNameMismatch if name does not follow the convention.
func ImageID(name string) (string, error) {
	m := idPattern.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("image id of %q: %w", name, ErrNameMismatch)
	}
	return m[1] + "_" + m[2], nil
}

// ImageName returns the bare stem of the last path segment:
// "/a/b/image001.tif" becomes "image001". The path is not validated.
func ImageName(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	stem, _, _ := strings.Cut(name, ".")
	return stem
}

// NumberOfCells returns the cell count encoded in name.
// Returns ErrNameMismatch if name does not follow the convention, and an
// error matching strconv.ErrRange if the count does not fit in an int.
func NumberOfCells(name string) (int, error) {
	m := cellsPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("cell count of %q: %w", name, ErrNameMismatch)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("cell count of %q: %w", name, err)
	}
	return n, nil
}

// ParseImageName decodes every field of a BBBC005 filename or path.
// Returns ErrNameMismatch if the name does not follow the convention, and an
// error matching strconv.ErrRange if a numeric field does not fit in an int.
func ParseImageName(name string) (ParsedName, error) {
	m := namePattern.FindStringSubmatch(ImageName(name))
	if m == nil {
		return ParsedName{}, fmt.Errorf("parse %q: %w", name, ErrNameMismatch)
	}

	cells, err := strconv.Atoi(m[3])
	if err != nil {
		return ParsedName{}, fmt.Errorf("parse %q: %w", name, err)
	}
	blur, err := strconv.Atoi(m[4])
	if err != nil {
		return ParsedName{}, fmt.Errorf("parse %q: %w", name, err)
	}

	var channel int
	if m[6] != "" {
		if channel, err = strconv.Atoi(m[6]); err != nil {
			return ParsedName{}, fmt.Errorf("parse %q: %w", name, err)
		}
	}

	return ParsedName{
		Row:       m[1],
		Column:    m[2],
		CellCount: cells,
		Blur:      blur,
		Sample:    m[5],
		Channel:   channel,
		id:        m[2] + "_C" + m[3] + "_s" + m[5],
	}, nil
}
