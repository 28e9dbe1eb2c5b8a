package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// DownloadProgress represents the install progress information
type DownloadProgress struct {
	Version         string
	TotalBytes      int64
	DownloadedBytes int64
	Speed           float64 // bytes per second
	Status          string  // downloading, extracting, completed, failed
	URL             string
	Error           error
}

// ProgressCallback is called during install to report progress
type ProgressCallback func(progress DownloadProgress)

const progressInterval = 500 * time.Millisecond

// progressReader wraps an io.Reader to track download progress
type progressReader struct {
	reader          io.Reader
	totalBytes      int64
	downloadedBytes int64
	lastUpdate      time.Time
	lastBytes       int64
	callback        ProgressCallback
	version         string
	url             string
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.downloadedBytes += int64(n)

	now := time.Now()
	if now.Sub(pr.lastUpdate) >= progressInterval || errors.Is(err, io.EOF) {
		duration := now.Sub(pr.lastUpdate).Seconds()
		var speed float64
		if duration > 0 {
			speed = float64(pr.downloadedBytes-pr.lastBytes) / duration
		}
		if pr.callback != nil {
			pr.callback(DownloadProgress{
				Version:         pr.version,
				TotalBytes:      pr.totalBytes,
				DownloadedBytes: pr.downloadedBytes,
				Speed:           speed,
				Status:          "downloading",
				URL:             pr.url,
			})
		}
		pr.lastUpdate = now
		pr.lastBytes = pr.downloadedBytes
	}
	return n, err
}

// download fetches rawURL into dest with a single GET and returns the file
// name the server (or the URL path) gives the archive.
func (m *Manager) download(ctx context.Context, version, rawURL, dest string) (fileName string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, rawURL, resp.Status)
	}

	fileName = parseContentDispositionFilename(resp.Header.Get("Content-Disposition"))
	if fileName == "" {
		if fileName, err = getFileNameFromURL(rawURL); err != nil {
			return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	pr := &progressReader{
		reader:     resp.Body,
		totalBytes: resp.ContentLength,
		lastUpdate: time.Now(),
		callback:   m.emitProgress,
		version:    version,
		url:        rawURL,
	}
	if _, err = io.Copy(out, pr); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err = out.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return fileName, nil
}

// 获取URL中的文件名
func getFileNameFromURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return path.Base(parsedURL.Path), nil
}

// parseContentDispositionFilename 从 Content-Disposition header 中解析 filename
func parseContentDispositionFilename(cd string) string {
	if cd == "" {
		return ""
	}

	// 1. 先尝试 filename*=UTF-8''... (RFC 5987)
	if idx := strings.Index(cd, "filename*="); idx >= 0 {
		rest := cd[idx+len("filename*="):]
		if encIdx := strings.Index(rest, "''"); encIdx >= 0 {
			encoded := rest[encIdx+2:]
			if endIdx := strings.Index(encoded, ";"); endIdx >= 0 {
				encoded = encoded[:endIdx]
			}
			encoded = strings.TrimSpace(encoded)
			if decoded, err := url.PathUnescape(encoded); err == nil && decoded != "" {
				return decoded
			}
		}
	}

	// 2. 尝试 filename="..." (带引号)
	if idx := strings.Index(cd, `filename="`); idx >= 0 {
		rest := cd[idx+len(`filename="`):]
		if endIdx := strings.Index(rest, `"`); endIdx >= 0 {
			return rest[:endIdx]
		}
	}

	// 3. 尝试 filename=... (不带引号)
	if idx := strings.Index(cd, "filename="); idx >= 0 {
		rest := cd[idx+len("filename="):]
		if endIdx := strings.Index(rest, ";"); endIdx >= 0 {
			rest = rest[:endIdx]
		}
		return strings.TrimSpace(rest)
	}

	return ""
}
