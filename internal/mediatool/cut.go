package mediatool

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// CutParams describes one clip to render.
type CutParams struct {
	SourcePath  string
	OutputPath  string
	StartTime   float64
	Duration    float64
	Orientation models.Orientation
	Preset      string
	CRF         int
	AudioBitrate string
}

const (
	portraitWidth   = 1080
	portraitHeight  = 1920
	landscapeWidth  = 1920
	landscapeHeight = 1080
)

// CutClip extracts [StartTime, StartTime+Duration) from SourcePath, scales
// and center-crops it to the requested orientation's target resolution,
// and encodes H.264 yuv420p video + AAC audio with a faststart moov atom
// (spec §4.H). It mirrors the teacher's exec.CommandContext + CombinedOutput
// idiom from services/ffmpeg.go.
func (t *Tool) CutClip(ctx context.Context, p CutParams) (models.VideoInfo, error) {
	width, height := portraitWidth, portraitHeight
	if p.Orientation == models.OrientationLandscape {
		width, height = landscapeWidth, landscapeHeight
	}

	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		width, height, width, height,
	)

	args := []string{
		"-ss", fmt.Sprintf("%.3f", p.StartTime),
		"-i", p.SourcePath,
		"-t", fmt.Sprintf("%.3f", p.Duration),
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", orDefault(p.Preset, "veryfast"),
		"-crf", fmt.Sprintf("%d", orDefaultInt(p.CRF, 23)),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", orDefault(p.AudioBitrate, "128k"),
		"-movflags", "+faststart",
		"-y",
		p.OutputPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return models.VideoInfo{}, engineerr.Wrap(engineerr.ClipGenerationFailed, fmt.Sprintf("ffmpeg cut failed: %s", truncate(string(output), 500)), err)
	}

	if _, statErr := os.Stat(p.OutputPath); statErr != nil {
		return models.VideoInfo{}, engineerr.Wrap(engineerr.ClipGenerationFailed, "ffmpeg did not produce an output clip", statErr)
	}

	meta, err := t.Probe(ctx, p.OutputPath)
	if err != nil {
		return models.VideoInfo{}, engineerr.Wrap(engineerr.ClipGenerationFailed, "failed to probe rendered clip", err)
	}

	return models.VideoInfo{
		Width:   meta.Width,
		Height:  meta.Height,
		FPS:     meta.FPS,
		Codec:   meta.Codec,
		Bitrate: meta.Bitrate,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
