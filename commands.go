package bbbc005

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCommand creates a Cobra command tree for dataset preparation.
// It can run standalone or be added to a parent CLI's root command.
//
// Commands provided:
//   - bbbc005 fetch
//   - bbbc005 index
//   - bbbc005 split [--seed N] [--val-fraction F] [--out DIR]
//   - bbbc005 id <name>...
//
// Global flags: --root, --json, --quiet, --verbose
func NewCommand(cfg Config, opts ...FetchOption) *cobra.Command {
	var (
		root       string
		jsonOutput bool
		quiet      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "bbbc005",
		Short: "Prepare the BBBC005 segmentation dataset",
		Long:  "Download, index and split the BBBC005 synthetic cell images and their ground-truth masks.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				root = "."
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&root, "root", cfg.Root, "Directory below which data/ is created")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(fetchCmd(&root, &quiet, &verbose, opts))
	cmd.AddCommand(indexCmd(&root, &jsonOutput, &quiet))
	cmd.AddCommand(splitCmd(&root, &jsonOutput, &quiet))
	cmd.AddCommand(idCmd(&jsonOutput))

	return cmd
}

func fetchCmd(root *string, quiet, verbose *bool, opts []FetchOption) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download and extract the dataset",
		Long:  "Download the image and ground-truth archives and extract them below <root>/data. Does nothing once data_paths.txt exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fetchOpts := append([]FetchOption(nil), opts...)

			if !*quiet {
				var (
					mu         sync.Mutex
					current    string
					startTime  time.Time
					lastRender time.Time
					rendering  bool
				)
				finish := func() {
					if rendering {
						fmt.Fprint(out, "\x1b[?25h\n")
						rendering = false
					}
				}

				fetchOpts = append(fetchOpts, WithProgress(func(p FetchProgress) {
					mu.Lock()
					defer mu.Unlock()

					switch p.Phase {
					case "download":
						if p.Archive != current {
							finish()
							current = p.Archive
							startTime = time.Now()
							fmt.Fprintf(out, "Downloading %s\n", archiveURL(p.Archive))
							fmt.Fprint(out, "\x1b[?25l")
							rendering = true
						}
						if p.BytesCompleted == p.BytesTotal || time.Since(lastRender) >= 100*time.Millisecond {
							renderProgress(out, p.BytesCompleted, p.BytesTotal, startTime)
							lastRender = time.Now()
						}
					case "extract":
						finish()
						if *verbose && p.CurrentFile != "" {
							fmt.Fprintf(out, "Extracting: %s\n", p.CurrentFile)
						}
					}
				}))
				defer func() {
					mu.Lock()
					finish()
					mu.Unlock()
				}()
			}

			f := NewFetcher(Config{Root: *root}, fetchOpts...)
			if f.Complete() {
				if !*quiet {
					fmt.Fprintf(out, "Dataset already present in %s\n", f.DataDir())
				}
				return nil
			}

			if err := f.Fetch(cmd.Context()); err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(out, "Dataset extracted to %s\n", f.DataDir())
			}
			return nil
		},
	}
}

func indexCmd(root *string, jsonOutput, quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Pair images with masks and write data_paths.txt",
		Long:  "Pair every extracted image with its ground-truth mask and record the pairs in <root>/data/data_paths.txt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := BuildIndex(*root)
			if err != nil {
				return err
			}
			if err := WriteIndex(*root, entries); err != nil {
				return err
			}

			if *jsonOutput {
				return outputJSON(cmd.OutOrStdout(), entries)
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d image/target pairs in %s\n",
					len(entries), newStorage(*root).markerPath())
			}
			return nil
		},
	}
}

func splitCmd(root *string, jsonOutput, quiet *bool) *cobra.Command {
	var (
		seed        int64
		valFraction float64
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the index into training and validation sets",
		Long:  "Split data_paths.txt into train.tsv and val.tsv, stratified by cell count.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ReadIndex(*root)
			if err != nil {
				return err
			}

			images := make([]string, len(entries))
			targets := make([]string, len(entries))
			for i, e := range entries {
				images[i], targets[i] = e.Image, e.Target
			}

			split, err := SplitData(images, targets, seed, WithValidationFraction(valFraction))
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = newStorage(*root).dataDir()
			}
			if err := WriteSplit(dir, split); err != nil {
				return err
			}

			if *jsonOutput {
				return outputJSON(cmd.OutOrStdout(), split)
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Training:   %d pairs -> %s\n", len(split.TrainImages), filepath.Join(dir, TrainManifest))
				fmt.Fprintf(cmd.OutOrStdout(), "Validation: %d pairs -> %s\n", len(split.ValImages), filepath.Join(dir, ValManifest))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", DefaultSeed, "Random seed")
	cmd.Flags().Float64Var(&valFraction, "val-fraction", DefaultValidationFraction, "Share of pairs reserved for validation")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for train.tsv and val.tsv (default <root>/data)")
	return cmd
}

func idCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "id <name>...",
		Short: "Print image ID and cell count of file names",
		Long:  "Decode BBBC005 file names or paths into their image ID and cell count.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type nameInfo struct {
				Name  string `json:"name"`
				ID    string `json:"id"`
				Cells int    `json:"cells"`
			}

			infos := make([]nameInfo, 0, len(args))
			for _, arg := range args {
				id, err := ImageID(arg)
				if err != nil {
					return err
				}
				cells, err := NumberOfCells(arg)
				if err != nil {
					return err
				}
				infos = append(infos, nameInfo{Name: ImageName(arg), ID: id, Cells: cells})
			}

			if *jsonOutput {
				return outputJSON(cmd.OutOrStdout(), infos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID\tCELLS")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", info.Name, info.ID, info.Cells)
			}
			return tw.Flush()
		},
	}
}

// Output helpers

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// renderProgress renders the download progress line to the writer.
// Format: [============>                 ] 45% 12.40 MB / 27.60 MB (5.2 MB/s, elapsed: 30s)
// A negative total means the size is unknown; only the byte count is shown.
func renderProgress(w io.Writer, current, total int64, startTime time.Time) {
	elapsed := time.Since(startTime)

	var speed float64
	if elapsed.Seconds() > 0 {
		speed = float64(current) / elapsed.Seconds()
	}

	if total <= 0 {
		fmt.Fprintf(w, "\r\x1b[K%s (%s, elapsed: %s)",
			formatSize(current), formatSpeed(speed), formatDuration(elapsed))
		return
	}

	pct := float64(current) / float64(total) * 100

	const barWidth = 30
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var bar string
	if filled >= barWidth {
		bar = strings.Repeat("=", barWidth)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barWidth-filled-1)
	} else {
		bar = ">" + strings.Repeat(" ", barWidth-1)
	}

	fmt.Fprintf(w, "\r\x1b[K[%s] %.0f%% %s / %s (%s, elapsed: %s)",
		bar, pct, formatSize(current), formatSize(total), formatSpeed(speed), formatDuration(elapsed))
}

// formatSpeed formats bytes per second as KB/s or MB/s.
func formatSpeed(bytesPerSec float64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	if bytesPerSec >= MB {
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/MB)
	}
	if bytesPerSec >= KB {
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/KB)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}

// formatDuration formats a duration as human-readable text (e.g., "5s", "2m 30s", "1h 5m").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if mins > 0 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
