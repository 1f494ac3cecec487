package mediatool

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/bobarin/clipforge/internal/engineerr"
)

// ExtractFrame grabs a single JPEG frame at atSeconds into outPath. Used
// by the Visual Analyzer's optional AI face-framing pass — one frame per
// segment, not a full per-frame scan of the asset.
func (t *Tool) ExtractFrame(ctx context.Context, videoPath string, atSeconds float64, outPath string) error {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return engineerr.Wrap(engineerr.AnalysisFailed, fmt.Sprintf("ffmpeg frame extraction failed: %s", truncate(string(output), 300)), err)
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		return engineerr.Wrap(engineerr.AnalysisFailed, "ffmpeg did not produce a frame", statErr)
	}
	return nil
}
