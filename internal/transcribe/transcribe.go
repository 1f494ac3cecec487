// Package transcribe implements the Transcription stage (spec §4.C): it
// shells out to a local speech-to-text binary and parses its JSON segment
// output, mirroring the teacher's exec.CommandContext child-process idiom.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// Transcriber runs a local speech-to-text binary against an extracted
// audio track.
type Transcriber struct {
	BinaryName string
}

func New(binaryName string) *Transcriber {
	return &Transcriber{BinaryName: binaryName}
}

type rawOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs the configured binary against wavPath and returns the
// parsed transcript. wavPath is resolved to an absolute path before
// handoff, because the binary resolves relative paths against its own
// working directory, not the caller's.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) (models.TranscriptResult, error) {
	absPath, err := filepath.Abs(wavPath)
	if err != nil {
		return models.TranscriptResult{}, engineerr.Wrap(engineerr.TranscriptionFailed, "failed to resolve audio path", err)
	}

	args := []string{
		"--output-format", "json",
		"--file", absPath,
	}

	cmd := exec.CommandContext(ctx, t.BinaryName, args...)
	stdout, err := cmd.Output()
	if err != nil {
		return models.TranscriptResult{}, engineerr.Wrap(engineerr.TranscriptionFailed, fmt.Sprintf("%s failed", t.BinaryName), err)
	}

	var raw rawOutput
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return models.TranscriptResult{}, engineerr.Wrap(engineerr.TranscriptionFailed, fmt.Sprintf("%s produced invalid JSON", t.BinaryName), err)
	}

	result := models.TranscriptResult{
		Text:     raw.Text,
		Language: raw.Language,
		Duration: raw.Duration,
		Segments: make([]models.TranscriptSegment, 0, len(raw.Segments)),
	}
	for _, s := range raw.Segments {
		result.Segments = append(result.Segments, models.TranscriptSegment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}

	if len(result.Segments) == 0 {
		return result, engineerr.New(engineerr.TranscriptionFailed, "transcription produced no segments")
	}

	return result, nil
}
