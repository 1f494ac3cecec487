package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// allowedContentTypes caps the http-url adapter to container types the
// rest of the pipeline can probe and encode, mapped to the file extension
// used for the persisted upload (spec §6: "uploads/<jobId>.<ext>").
var allowedContentTypes = map[string]string{
	"video/mp4":               ".mp4",
	"video/quicktime":         ".mov",
	"video/x-matroska":        ".mkv",
	"video/webm":              ".webm",
	"application/octet-stream": ".bin",
}

// HTTPURLAdapter downloads a direct media URL with a byte cap and
// content-type allow-list, retrying transient failures the way the
// teacher's storage.go does — upgraded to cenkalti/backoff/v4 instead of
// the hand-rolled jittered backoff.
type HTTPURLAdapter struct {
	MaxFileSize int64
	Client      *http.Client
}

func NewHTTPURLAdapter(maxFileSize int64) *HTTPURLAdapter {
	return &HTTPURLAdapter{
		MaxFileSize: maxFileSize,
		Client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (a *HTTPURLAdapter) Fetch(ctx context.Context, source models.Source, jobID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to create destination directory", err)
	}

	tempPath := filepath.Join(destDir, jobID+".part")

	var lastErr error
	var ext string
	operation := func() error {
		gotExt, err := a.downloadOnce(ctx, source.URL, tempPath)
		if err == nil {
			ext = gotExt
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		os.Remove(tempPath)
		if lastErr != nil {
			err = lastErr
		}
		return "", engineerr.Wrap(engineerr.DownloadFailed, "http download failed", err)
	}

	finalPath := filepath.Join(destDir, jobID+ext)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to finalize downloaded file", err)
	}

	return finalPath, nil
}

// downloadOnce streams url into tempPath and returns the file extension
// resolved from the response Content-Type (spec §6 upload naming).
func (a *HTTPURLAdapter) downloadOnce(ctx context.Context, url, tempPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	contentType := resp.Header.Get("Content-Type")
	ext, ok := resolveExtension(contentType)
	if !ok {
		return "", backoff.Permanent(fmt.Errorf("unsupported content-type %q", contentType))
	}

	if resp.ContentLength > 0 && resp.ContentLength > a.MaxFileSize {
		return "", backoff.Permanent(&engineerr.Error{
			Code:    engineerr.FileTooLarge,
			Message: fmt.Sprintf("source reports %d bytes, exceeds limit of %d", resp.ContentLength, a.MaxFileSize),
		})
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	limited := io.LimitReader(resp.Body, a.MaxFileSize+1)
	written, err := io.Copy(out, limited)
	if err != nil {
		return "", fmt.Errorf("failed while streaming download: %w", err)
	}
	if written > a.MaxFileSize {
		return "", backoff.Permanent(&engineerr.Error{
			Code:    engineerr.FileTooLarge,
			Message: fmt.Sprintf("download exceeded limit of %d bytes", a.MaxFileSize),
		})
	}

	return ext, nil
}

// resolveExtension maps a response Content-Type to the persisted upload's
// file extension. An empty content-type (some origins omit it) falls back
// to .mp4 and lets the later probe/validate step reject bad files.
func resolveExtension(ct string) (string, bool) {
	if ct == "" {
		return ".mp4", true
	}
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	ext, ok := allowedContentTypes[ct]
	return ext, ok
}

func isRetryable(err error) bool {
	if engineerr.Is(err, engineerr.FileTooLarge) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "eof") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "status 502") ||
		strings.Contains(msg, "status 503") ||
		strings.Contains(msg, "status 504")
}
