package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"atelier/pkg/pool"
)

// DownloadOptions configures DownloadTaskFiles.
type DownloadOptions struct {
	// Workers bounds the number of parallel downloads; values below 1 mean 1.
	Workers int
	// Resume appends to partially downloaded files via Range requests when
	// the server supports them.
	Resume bool
	// Flatten writes files directly into the target directory instead of a
	// per-task subdirectory.
	Flatten bool
	// RateLimit caps the combined download speed in bytes per second;
	// 0 means unlimited.
	RateLimit int64
	// ProgressOut receives the progress bars. Nil means os.Stdout.
	ProgressOut io.Writer
}

// DownloadTaskFiles fetches a task's attachments into dir through a bounded
// worker pool. Each file request goes through the authenticated transport,
// so an expired session refreshes mid-pull exactly like any API call.
func (c *Client) DownloadTaskFiles(ctx context.Context, task Task, files []TaskFile, dir string, opts DownloadOptions) error {
	if len(files) == 0 {
		return nil
	}

	destDir := dir
	if !opts.Flatten {
		destDir = filepath.Join(dir, SanitizeName(task.Title))
	}
	if err := ensureDirExists(destDir); err != nil {
		return fmt.Errorf("failed to prepare download directory %s: %w", destDir, err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	// One bucket for the whole pull, shared across workers.
	limiter := newRateLimiter(opts.RateLimit)

	errs := pool.Run(ctx, files, workers, func(ctx context.Context, file TaskFile) error {
		return c.downloadFile(ctx, file, destDir, opts, limiter)
	})
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(files), errors.Join(errs...))
	}
	return nil
}

// downloadFile fetches one attachment, resuming from the local byte count
// when allowed and showing a per-file progress bar.
func (c *Client) downloadFile(ctx context.Context, file TaskFile, destDir string, opts DownloadOptions, limiter *rateLimiter) error {
	filePath := filepath.Join(destDir, filepath.Base(file.Name))

	// Probe for the real size and Range support. The manifest size is the
	// fallback when the probe fails.
	totalSize := file.Size
	resumable := false
	if resp, err := c.do(ctx, http.MethodHead, file.URL, nil, nil); err == nil {
		if resp.ContentLength > 0 {
			totalSize = resp.ContentLength
		}
		resumable = resp.Header.Get("Accept-Ranges") == "bytes"
		drainBody(resp)
	} else {
		log.Warn().Err(err).Str("file", file.Name).Msg("Size probe failed; continuing without it")
	}
	if totalSize < 0 {
		totalSize = 0
	}

	var startOffset int64
	if opts.Resume && resumable {
		if info, err := os.Stat(filePath); err == nil {
			startOffset = info.Size()
		}
	}
	if totalSize > 0 && startOffset >= totalSize {
		log.Info().Str("file", file.Name).Msg("File already fully downloaded; skipping")
		return nil
	}

	header := http.Header{}
	if startOffset > 0 {
		header.Set("Range", fmt.Sprintf("bytes=%d-", startOffset))
	}
	resp, err := c.do(ctx, http.MethodGet, file.URL, nil, header)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		// The server ignored the range; start the file over.
		startOffset = 0
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to download %s: %w", file.Name,
			&HTTPError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var out *os.File
	if startOffset > 0 {
		out, err = os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	} else {
		out, err = os.Create(filePath)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer out.Close()

	progressOut := opts.ProgressOut
	if progressOut == nil {
		progressOut = os.Stdout
	}
	bar := progressbar.NewOptions64(
		totalSize,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", file.Name)),
		progressbar.OptionSetWriter(progressOut),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if err := bar.Set64(startOffset); err != nil {
		log.Warn().Err(err).Msg("Failed to set progress bar offset")
	}

	reader := io.TeeReader(limiter.Wrap(resp.Body), bar)
	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("failed to save %s: %w", filePath, err)
	}
	return nil
}

// ensureDirExists creates the directory when missing and rejects a path that
// exists as a regular file.
func ensureDirExists(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path %s exists and is not a directory", path)
		}
		return nil
	}
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o750)
	}
	return err
}
