package bbbc005

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrNameMismatch", ErrNameMismatch, "bbbc005: name does not match dataset convention"},
		{"ErrLengthMismatch", ErrLengthMismatch, "bbbc005: image and target counts differ"},
		{"ErrClassTooSmall", ErrClassTooSmall, "bbbc005: stratification class too small"},
		{"ErrSplitTooSmall", ErrSplitTooSmall, "bbbc005: split subset smaller than class count"},
		{"ErrNetworkError", ErrNetworkError, "bbbc005: network error"},
		{"ErrStorageError", ErrStorageError, "bbbc005: storage error"},
		{"ErrArchiveError", ErrArchiveError, "bbbc005: invalid archive"},
		{"ErrNotDownloaded", ErrNotDownloaded, "bbbc005: dataset not downloaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.HasPrefix(got, "bbbc005: ") {
				t.Errorf("%s: message %q does not have 'bbbc005: ' prefix", tt.name, got)
			}
			if got != tt.wantMsg {
				t.Errorf("%s: got %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	sentinels := []error{
		ErrNameMismatch,
		ErrLengthMismatch,
		ErrClassTooSmall,
		ErrSplitTooSmall,
		ErrNetworkError,
		ErrStorageError,
		ErrArchiveError,
		ErrNotDownloaded,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("outer context: %w", fmt.Errorf("operation failed: %w", sentinel))
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped, %v) = false, want true", sentinel)
			}
			for _, other := range sentinels {
				if other != sentinel && errors.Is(wrapped, other) {
					t.Errorf("errors.Is(wrapped, %v) = true, want false", other)
				}
			}
		})
	}
}
