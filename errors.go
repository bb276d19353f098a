package bbbc005

import "errors"

// Sentinel errors for dataset preparation.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrNameMismatch indicates a filename does not follow the BBBC005 naming convention.
	ErrNameMismatch = errors.New("bbbc005: name does not match dataset convention")

	// ErrLengthMismatch indicates image and target sequences differ in length.
	ErrLengthMismatch = errors.New("bbbc005: image and target counts differ")

	// ErrClassTooSmall indicates a cell-count class has fewer than two members
	// and cannot appear in both split subsets.
	ErrClassTooSmall = errors.New("bbbc005: stratification class too small")

	// ErrSplitTooSmall indicates one split subset is smaller than the number of classes.
	ErrSplitTooSmall = errors.New("bbbc005: split subset smaller than class count")

	// ErrNetworkError indicates a network or connection failure.
	ErrNetworkError = errors.New("bbbc005: network error")

	// ErrStorageError indicates a filesystem operation failed.
	ErrStorageError = errors.New("bbbc005: storage error")

	// ErrArchiveError indicates a downloaded archive could not be extracted.
	ErrArchiveError = errors.New("bbbc005: invalid archive")

	// ErrNotDownloaded indicates the dataset or its index is not present locally.
	ErrNotDownloaded = errors.New("bbbc005: dataset not downloaded")
)
