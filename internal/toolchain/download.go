package toolchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// httpDoer describes the HTTP client the bundle manager downloads with.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	downloadChunkSize    = 64 << 10
	checksumSourceLimit  = 1 << 20
	downloadUserAgent    = "submux"
	lockRetryDelay       = 100 * time.Millisecond
	tempDownloadDirName  = ".download-"
	archiveDownloadPerms = 0o644
)

// downloadArchive streams url to destPath in bounded chunks, emitting
// throttled download progress and honoring cancellation between reads.
func (m *Manager) downloadArchive(ctx context.Context, tool, url, destPath string, report Reporter) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, archiveDownloadPerms)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	total := resp.ContentLength
	var current int64
	var gate progressGate
	buf := make([]byte, downloadChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("download %s: %w", url, err)
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("write %s: %w", destPath, err)
			}
			current += int64(n)
			if report != nil && gate.ready(time.Now(), current) {
				report(Progress{Tool: tool, Stage: StageDownload, TotalBytes: total, CurrentBytes: current})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("download %s: %w", url, readErr)
		}
	}

	if report != nil {
		report(Progress{Tool: tool, Stage: StageDownload, TotalBytes: total, CurrentBytes: current})
	}
	return out.Close()
}

// fetchChecksumSource retrieves a small checksum text document.
func (m *Manager) fetchChecksumSource(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch checksum source %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch checksum source %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, checksumSourceLimit))
	if err != nil {
		return "", fmt.Errorf("read checksum source %s: %w", url, err)
	}
	return string(data), nil
}
