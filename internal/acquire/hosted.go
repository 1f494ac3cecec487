package acquire

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// HostedAdapter fetches a hosted-url source (a platform URL a generic HTTP
// GET can't resolve to a media file — YouTube, etc.) by shelling out to an
// external extractor binary, mirroring the teacher's exec.CommandContext
// child-process idiom from services/ffmpeg.go.
type HostedAdapter struct {
	// BinaryName is the extractor executable, e.g. "yt-dlp".
	BinaryName string
	// CookiesFile, if set, is passed through for sources requiring auth.
	CookiesFile string
}

func NewHostedAdapter(binaryName, cookiesFile string) *HostedAdapter {
	return &HostedAdapter{BinaryName: binaryName, CookiesFile: cookiesFile}
}

func (a *HostedAdapter) Fetch(ctx context.Context, source models.Source, jobID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, "failed to create destination directory", err)
	}

	outputStem := jobID
	outputTemplate := filepath.Join(destDir, outputStem+".%(ext)s")

	args := []string{
		"--no-playlist",
		"--format", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--output", outputTemplate,
	}
	if a.CookiesFile != "" {
		args = append(args, "--cookies", a.CookiesFile)
	}
	args = append(args, source.URL)

	cmd := exec.CommandContext(ctx, a.BinaryName, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, fmt.Sprintf("%s failed: %s", a.BinaryName, truncateStr(string(output), 500)), err)
	}

	path, err := findByPrefix(destDir, outputStem)
	if err != nil {
		return "", engineerr.Wrap(engineerr.DownloadFailed, fmt.Sprintf("%s reported success but produced no output file", a.BinaryName), err)
	}

	return path, nil
}

// findByPrefix locates the single file in dir whose basename starts with
// stem. The extractor chooses the container extension itself (.mp4, .mkv,
// .webm), so the template's literal stem is the only fixed part we can
// match on.
func findByPrefix(dir, stem string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), stem) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no file with prefix %q found in %s", stem, dir)
}

func truncateStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
