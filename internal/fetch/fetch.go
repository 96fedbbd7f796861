package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "edpulse/internal/errors"
)

// Source names one snapshot workbook to retrieve.
type Source struct {
	Year int
	URL  string
}

// Downloader retrieves snapshot workbooks over HTTP. Downloads run
// concurrently but share a rate limiter so the publisher is not hammered
// when more sources are added.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDownloader creates a downloader with the given per-second request rate.
func NewDownloader(logger *slog.Logger, requestsPerSecond float64) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Downloader{
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}
}

// FetchAll downloads every source into destDir, naming each file by the
// provided naming function. Already-present files are not refetched unless
// force is set.
func (d *Downloader) FetchAll(ctx context.Context, destDir string, sources []Source, fileName func(year int) string, force bool) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create download directory", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		dest := filepath.Join(destDir, fileName(src.Year))
		g.Go(func() error {
			if !force {
				if _, err := os.Stat(dest); err == nil {
					d.logger.InfoContext(gctx, "snapshot already downloaded",
						slog.Int("year", src.Year),
						slog.String("path", dest))
					return nil
				}
			}
			return d.fetchOne(gctx, src, dest)
		})
	}
	return g.Wait()
}

// fetchOne downloads a single workbook to a temp file and renames it into
// place, so a partial download never masquerades as a complete snapshot.
func (d *Downloader) fetchOne(ctx context.Context, src Source, dest string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	d.logger.InfoContext(ctx, "downloading snapshot",
		slog.Int("year", src.Year),
		slog.String("url", src.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return apperrors.NewNetworkError("failed to build snapshot request", err).
			WithContext("year", src.Year)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("failed to download snapshot", err).
			WithContext("year", src.Year).
			WithContext("url", src.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewNetworkError(
			fmt.Sprintf("snapshot download returned status %d", resp.StatusCode), nil).
			WithContext("year", src.Year).
			WithContext("url", src.URL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".snapshot-*.tmp")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp download file", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return apperrors.NewStorageError("failed to write snapshot download", err).
			WithContext("year", src.Year)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return apperrors.NewStorageError("failed to move snapshot into place", err)
	}

	d.logger.InfoContext(ctx, "snapshot downloaded",
		slog.Int("year", src.Year),
		slog.String("path", dest),
		slog.Int64("bytes", written),
		slog.Duration("duration", time.Since(start)))
	return nil
}
