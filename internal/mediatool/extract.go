package mediatool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bobarin/clipforge/internal/engineerr"
)

// ExtractSpeechAudio pulls a 16kHz mono 16-bit PCM WAV track out of
// videoPath — the format the local speech-to-text binary expects (spec
// §4.C). outDir must already exist; the output filename is derived from
// videoPath's basename.
func (t *Tool) ExtractSpeechAudio(ctx context.Context, videoPath, outDir string) (string, error) {
	outPath := filepath.Join(outDir, stemOf(videoPath)+".wav")

	args := []string{
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-sample_fmt", "s16",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", engineerr.Wrap(engineerr.TranscriptionFailed, fmt.Sprintf("ffmpeg audio extraction failed: %s", truncate(string(output), 500)), err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", engineerr.Wrap(engineerr.TranscriptionFailed, "ffmpeg did not produce an audio file", err)
	}

	return outPath, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
