package bbbc005

// Config configures dataset fetching and indexing.
type Config struct {
	// Root is the directory below which the data/ folder is created.
	// If empty, the current directory is used.
	Root string
}

// ParsedName holds every field of a BBBC005 filename.
type ParsedName struct {
	// Row is the well-row letter, e.g. "A".
	Row string

	// Column is the well-column digits, e.g. "05".
	Column string

	// CellCount is the number of simulated cells in the image.
	CellCount int

	// Blur is the focus blur level (the F field).
	Blur int

	// Sample is the sample digits, e.g. "05".
	Sample string

	// Channel is the stain channel (the w field), or 0 if absent.
	Channel int

	// id is the ImageID of the parsed name.
	id string
}

// ID returns the identifier shared by every blur level of the same image.
func (n ParsedName) ID() string {
	return n.id
}

// Split holds the result of a train/validation split.
// TrainImages[i] pairs with TrainTargets[i], and likewise for the validation subset.
type Split struct {
	TrainImages  []string `json:"train_images"`
	ValImages    []string `json:"val_images"`
	TrainTargets []string `json:"train_targets"`
	ValTargets   []string `json:"val_targets"`
}

// IndexEntry pairs an image with its ground-truth mask.
type IndexEntry struct {
	Image  string `json:"image" tsv:"image"`
	Target string `json:"target" tsv:"target"`
}

// FetchProgress reports progress during a fetch.
type FetchProgress struct {
	// Phase is "download" or "extract".
	Phase string

	// Archive is the archive file name, e.g. "BBBC005_v1_images.zip".
	Archive string

	// BytesTotal is the archive size, or -1 if the server did not report it.
	BytesTotal int64

	// BytesCompleted is the number of archive bytes received so far.
	BytesCompleted int64

	// CurrentFile is the entry being extracted during the extract phase.
	CurrentFile string
}
