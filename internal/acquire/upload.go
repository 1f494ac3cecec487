package acquire

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// UploadAdapter copies an already-local file (e.g. one received over the
// thin HTTP surface's multipart upload) into the job's working directory.
type UploadAdapter struct{}

func NewUploadAdapter() *UploadAdapter {
	return &UploadAdapter{}
}

func (a *UploadAdapter) Fetch(ctx context.Context, source models.Source, jobID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to create destination directory", err)
	}

	in, err := os.Open(source.Path)
	if err != nil {
		return "", engineerr.Wrap(engineerr.InvalidInput, "uploaded file is not readable", err)
	}
	defer in.Close()

	destPath := filepath.Join(destDir, jobID+filepath.Ext(source.Path))
	out, err := os.Create(destPath)
	if err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to create destination file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to copy uploaded file", err)
	}

	return destPath, nil
}
