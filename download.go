package bbbc005

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Remote archives.
const (
	// BaseURL is where the BBBC005 archives are published.
	BaseURL = "https://data.broadinstitute.org/bbbc/BBBC005"

	// ImagesArchive holds every synthetic image.
	ImagesArchive = "BBBC005_v1_images.zip"

	// GroundTruthArchive holds the segmentation masks.
	GroundTruthArchive = "BBBC005_v1_ground_truth.zip"

	// GroundTruthPrefix is the archive folder kept when extracting GroundTruthArchive.
	GroundTruthPrefix = "BBBC005_v1_ground_truth/"
)

// archiveURL returns the download URL of an archive.
func archiveURL(archive string) string {
	return BaseURL + "/" + archive
}

// archiveDownloader fetches whole archives over HTTP.
type archiveDownloader struct {
	// httpClient is used for HTTP requests.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// newArchiveDownloader creates a new archive downloader.
func newArchiveDownloader(client HTTPClient, logger Logger) *archiveDownloader {
	return &archiveDownloader{
		httpClient: client,
		logger:     logger,
	}
}

// download fetches url in full and writes it to dest.
// The onProgress callback receives (bytesCompleted, bytesTotal) as the body
// is read; bytesTotal is -1 when the server sends no length.
// A failed download may leave a partial file at dest.
func (d *archiveDownloader) download(ctx context.Context, url, dest string, onProgress func(completed, total int64)) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w: %w", url, ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching %s: status %d: %w", url, resp.StatusCode, ErrNetworkError)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create %s: %w", ErrStorageError, dest, err)
	}
	defer out.Close()

	var reader io.Reader = resp.Body
	if onProgress != nil {
		total := resp.ContentLength
		var completed int64
		reader = &progressReader{reader: resp.Body, onProgress: func(delta int64) {
			completed += delta
			onProgress(completed, total)
		}}
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return written, fmt.Errorf("downloading %s: %w: %w", url, ErrNetworkError, err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("%w: failed to write %s: %w", ErrStorageError, dest, err)
	}

	if d.logger != nil {
		d.logger.Debug("archive downloaded", "url", url, "bytes", written)
	}
	return written, nil
}

// progressReader wraps an io.Reader and reports progress as bytes are read.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
