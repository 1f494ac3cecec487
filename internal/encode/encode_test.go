package encode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/mediatool"
	"github.com/bobarin/clipforge/internal/models"
)

// fakeCutter writes a small placeholder file at p.OutputPath instead of
// shelling out to ffmpeg, so EncodeAll can be exercised without a real
// binary on PATH.
type fakeCutter struct {
	failOn string
}

func (f *fakeCutter) CutClip(ctx context.Context, p mediatool.CutParams) (models.VideoInfo, error) {
	if f.failOn != "" && strings.Contains(filepath.Base(p.OutputPath), f.failOn) {
		return models.VideoInfo{}, errFakeCut
	}
	if err := os.WriteFile(p.OutputPath, []byte("fake"), 0o644); err != nil {
		return models.VideoInfo{}, err
	}
	return models.VideoInfo{Width: 1080, Height: 1920}, nil
}

var errFakeCut = &fakeCutError{}

type fakeCutError struct{}

func (e *fakeCutError) Error() string { return "fake cut failure" }

func TestEncodeAllProducesOneFilePerClip(t *testing.T) {
	outDir := t.TempDir()
	cutter := &fakeCutter{}
	enc := New(cutter, config.ProcessingConfig{MaxConcurrentClips: 2})

	defs := []models.ClipDefinition{
		{ClipID: "clip-000", StartTime: 0, Duration: 10},
		{ClipID: "clip-001", StartTime: 10, Duration: 10},
	}

	clips, err := enc.EncodeAll(context.Background(), "job-1", "source.mp4", defs, models.OrientationPortrait, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	for _, c := range clips {
		if _, err := os.Stat(c.FilePath); err != nil {
			t.Errorf("expected output file %s to exist: %v", c.FilePath, err)
		}
		base := filepath.Base(c.FilePath)
		if !strings.HasPrefix(base, "job-1_"+c.ClipID+"_") || !strings.HasSuffix(base, ".mp4") {
			t.Errorf("expected filename shaped <jobId>_<clipId>_<uuid>.mp4, got %q", base)
		}
	}
}

func TestEncodeAllCleansUpPartialOutputOnFailure(t *testing.T) {
	outDir := t.TempDir()
	cutter := &fakeCutter{failOn: "clip-001"}
	enc := New(cutter, config.ProcessingConfig{MaxConcurrentClips: 1})

	defs := []models.ClipDefinition{
		{ClipID: "clip-000", StartTime: 0, Duration: 10},
		{ClipID: "clip-001", StartTime: 10, Duration: 10},
	}

	_, err := enc.EncodeAll(context.Background(), "job-1", "source.mp4", defs, models.OrientationPortrait, outDir)
	if err == nil {
		t.Fatal("expected an error when one clip fails to encode")
	}

	entries, readErr := os.ReadDir(outDir)
	if readErr != nil {
		t.Fatalf("failed to read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover files after a failed job, found %d", len(entries))
	}
}
