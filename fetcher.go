package bbbc005

import (
	"context"
	"fmt"
)

// Fetcher downloads and extracts the BBBC005 archives below a root directory.
type Fetcher struct {
	// storage resolves the dataset layout.
	storage *storage

	// downloader fetches archives.
	downloader *archiveDownloader

	// logger receives diagnostic messages. May be nil.
	logger Logger

	// progressFn receives progress updates. May be nil.
	progressFn func(FetchProgress)
}

// NewFetcher creates a Fetcher for cfg.Root.
func NewFetcher(cfg Config, opts ...FetchOption) *Fetcher {
	fcfg := newFetchConfig()
	for _, opt := range opts {
		opt(fcfg)
	}

	return &Fetcher{
		storage:    newStorage(cfg.Root),
		downloader: newArchiveDownloader(fcfg.httpClient, fcfg.logger),
		logger:     fcfg.logger,
		progressFn: fcfg.progressFn,
	}
}

// DownloadData fetches the dataset below root. See Fetcher.Fetch.
func DownloadData(ctx context.Context, root string, opts ...FetchOption) error {
	return NewFetcher(Config{Root: root}, opts...).Fetch(ctx)
}

// DataDir returns the directory the dataset is extracted into.
func (f *Fetcher) DataDir() string {
	return f.storage.dataDir()
}

// Complete reports whether the dataset marker is present, in which case
// Fetch does nothing.
func (f *Fetcher) Complete() bool {
	return f.storage.complete()
}

// Fetch downloads and extracts both archives into <root>/data.
//
// If <root>/data already holds data_paths.txt, Fetch returns nil without
// touching the network or the filesystem. Otherwise the images archive is
// extracted in full, the ground-truth archive is extracted restricted to
// GroundTruthPrefix, and each archive file is deleted after extraction.
//
// There is no checksum, retry or resume. A failure leaves whatever was
// written so far on disk.
func (f *Fetcher) Fetch(ctx context.Context) error {
	if f.storage.complete() {
		if f.logger != nil {
			f.logger.Debug("dataset already present", "dir", f.storage.dataDir())
		}
		return nil
	}

	if err := f.storage.createDirs(ImagesArchive, GroundTruthArchive); err != nil {
		return err
	}

	lock, err := f.storage.lockFetch()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	// Another process may have finished while we waited for the lock.
	if f.storage.complete() {
		return nil
	}

	if err := f.fetchArchive(ctx, ImagesArchive, ""); err != nil {
		return err
	}
	return f.fetchArchive(ctx, GroundTruthArchive, GroundTruthPrefix)
}

// fetchArchive downloads one archive, extracts the entries under prefix into
// data/ and removes the archive file.
func (f *Fetcher) fetchArchive(ctx context.Context, archive, prefix string) error {
	url := archiveURL(archive)
	path := f.storage.archivePath(archive)

	if f.logger != nil {
		f.logger.Info("downloading", "url", url)
	}

	_, err := f.downloader.download(ctx, url, path, func(completed, total int64) {
		if f.progressFn != nil {
			f.progressFn(FetchProgress{
				Phase:          "download",
				Archive:        archive,
				BytesTotal:     total,
				BytesCompleted: completed,
			})
		}
	})
	if err != nil {
		return err
	}

	files, err := extractZip(ctx, path, f.storage.dataDir(), prefix, func(name string) {
		if f.progressFn != nil {
			f.progressFn(FetchProgress{
				Phase:       "extract",
				Archive:     archive,
				CurrentFile: name,
			})
		}
	})
	if err != nil {
		return fmt.Errorf("extracting %s: %w", archive, err)
	}

	if f.logger != nil {
		f.logger.Info("extracted", "archive", archive, "files", files)
	}

	return f.storage.removeFile(path)
}
