// Command bbbc005 downloads, indexes and splits the BBBC005 dataset.
//
// Configuration is loaded from environment variables:
//   - BBBC005_ROOT: Directory below which data/ is created (optional, default ".")
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bbbc-tools/bbbc005"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidArgs indicates invalid command line arguments or file names.
	ExitInvalidArgs = 2

	// ExitNotDownloaded indicates the dataset or its index is missing.
	ExitNotDownloaded = 3

	// ExitNetworkError indicates a network or connection failure.
	ExitNetworkError = 5

	// ExitArchiveError indicates a downloaded archive could not be extracted.
	ExitArchiveError = 6

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 7

	// ExitSplitError indicates the index cannot be stratified.
	ExitSplitError = 8

	// ExitInterrupted indicates the command was cancelled, e.g. by Ctrl-C.
	ExitInterrupted = 130
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "bbbc005",
		Level:           log.WarnLevel,
	})

	cfg := bbbc005.Config{
		Root: os.Getenv("BBBC005_ROOT"),
	}

	cmd := bbbc005.NewCommand(cfg, bbbc005.WithLogger(charmLogger{logger}))
	cobra.OnInitialize(func() {
		flags := cmd.PersistentFlags()
		if verbose, _ := flags.GetBool("verbose"); verbose {
			logger.SetLevel(log.DebugLevel)
		} else if quiet, _ := flags.GetBool("quiet"); quiet {
			logger.SetLevel(log.ErrorLevel)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, bbbc005.ErrNameMismatch):
		return ExitInvalidArgs
	case errors.Is(err, bbbc005.ErrNotDownloaded):
		return ExitNotDownloaded
	case errors.Is(err, bbbc005.ErrNetworkError):
		return ExitNetworkError
	case errors.Is(err, bbbc005.ErrArchiveError):
		return ExitArchiveError
	case errors.Is(err, bbbc005.ErrStorageError):
		return ExitStorageError
	case errors.Is(err, bbbc005.ErrClassTooSmall),
		errors.Is(err, bbbc005.ErrSplitTooSmall),
		errors.Is(err, bbbc005.ErrLengthMismatch):
		return ExitSplitError
	default:
		return ExitGeneralError
	}
}

// charmLogger adapts a charmbracelet logger to bbbc005.Logger.
type charmLogger struct {
	l *log.Logger
}

func (c charmLogger) Debug(msg string, keysAndValues ...any) { c.l.Debug(msg, keysAndValues...) }
func (c charmLogger) Info(msg string, keysAndValues ...any)  { c.l.Info(msg, keysAndValues...) }
func (c charmLogger) Warn(msg string, keysAndValues ...any)  { c.l.Warn(msg, keysAndValues...) }
func (c charmLogger) Error(msg string, keysAndValues ...any) { c.l.Error(msg, keysAndValues...) }
