package downloader

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/afero"

	"github.com/imbecility/dood-gateway/pkg/models"
	"github.com/imbecility/dood-gateway/pkg/providers"
)

// chunkSize bounds peak memory per transfer while keeping per-write overhead
// negligible for multi-hundred-MB files.
const chunkSize = 1024 * 1024

// ProgressFunc receives cumulative bytes written after every chunk. total is
// 0 when the response carried no Content-Length.
type ProgressFunc func(written, total int64)

// Downloader streams a resolved media URL to disk. One file handle and one
// response stream per transfer, both released on every exit path; distinct
// targets are safe to download concurrently.
type Downloader struct {
	Client       providers.HTTPClient
	Fs           afero.Fs
	OutputDir    string
	ShowProgress bool
	Log          *slog.Logger
}

// Fetch downloads target.URL into target.Path in fixed-size chunks, calling
// onProgress (if non-nil) after each chunk. On any failure the partially
// written file is removed before the error is returned: the destination is
// either complete or absent, never truncated.
func (d *Downloader) Fetch(target models.DownloadTarget, onProgress ProgressFunc) error {
	req, err := http.NewRequest(http.MethodGet, target.URL, nil)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		cerr := Body.Close()
		if cerr != nil {
			d.logger().Warn("Error closing response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download fetch: http status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0 // unknown, progress is bytes-only
	}

	out, err := d.fs().Create(target.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", target.Path, err)
	}

	if err := copyChunks(out, resp.Body, total, onProgress); err != nil {
		d.discard(out, target.Path)
		return fmt.Errorf("download %s: %w", target.Path, err)
	}

	if err := out.Close(); err != nil {
		d.removePartial(target.Path)
		return fmt.Errorf("close %s: %w", target.Path, err)
	}

	d.logger().Debug("Download complete", "path", target.Path, "bytes", total)
	return nil
}

// copyChunks writes body to out in order, chunk by chunk, reporting
// cumulative progress after each write.
func copyChunks(out io.Writer, body io.Reader, total int64, onProgress ProgressFunc) error {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// discard closes and removes a half-written file. Best-effort: a failed
// removal is logged, the caller still reports the original error.
func (d *Downloader) discard(out afero.File, path string) {
	if cerr := out.Close(); cerr != nil {
		d.logger().Warn("Error closing partial file", "path", path, "err", cerr)
	}
	d.removePartial(path)
}

func (d *Downloader) removePartial(path string) {
	if exists, _ := afero.Exists(d.fs(), path); !exists {
		return
	}
	if rerr := d.fs().Remove(path); rerr != nil {
		d.logger().Error("Failed to remove partial file", "path", path, "err", rerr)
	} else {
		d.logger().Debug("Removed partial file", "path", path)
	}
}

func (d *Downloader) fs() afero.Fs {
	if d.Fs != nil {
		return d.Fs
	}
	return afero.NewOsFs()
}

func (d *Downloader) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
