package selectclips

import (
	"testing"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

func seg(start, end, combined float64) models.AnalyzedSegment {
	return models.AnalyzedSegment{
		TranscriptSegment: models.TranscriptSegment{Start: start, End: end, Text: "x"},
		Scores:            models.Scores{Combined: combined},
	}
}

func TestSelectMinScoreZeroReturnsMinOfCountAndPool(t *testing.T) {
	analyzed := []models.AnalyzedSegment{
		seg(0, 5, 0.9),
		seg(100, 105, 0.8),
		seg(200, 205, 0.7),
	}
	opts := models.Options{ClipDuration: 10, ClipCount: 5, MinScore: 0}

	clips, err := Select(analyzed, 300, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 3 {
		t.Errorf("expected min(clipCount=5, pool=3)=3 clips, got %d", len(clips))
	}
}

func TestSelectStopsAtClipCount(t *testing.T) {
	analyzed := []models.AnalyzedSegment{
		seg(0, 5, 0.9),
		seg(100, 105, 0.8),
		seg(200, 205, 0.7),
	}
	opts := models.Options{ClipDuration: 10, ClipCount: 2, MinScore: 0}

	clips, err := Select(analyzed, 300, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Errorf("expected exactly 2 clips, got %d", len(clips))
	}
}

func TestSelectDedupOverlappingWindows(t *testing.T) {
	analyzed := []models.AnalyzedSegment{
		seg(10, 12, 0.9),
		seg(15, 17, 0.8), // 20s window around 16 overlaps the first segment's 20s window around 11
		seg(100, 102, 0.7),
	}
	opts := models.Options{ClipDuration: 20, ClipCount: 5, MinScore: 0}

	clips, err := Select(analyzed, 300, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected overlapping second candidate to be dropped, got %d clips", len(clips))
	}
	if clips[0].StartTime >= clips[1].StartTime && clips[1].StartTime < clips[0].EndTime {
		t.Errorf("selected clips unexpectedly overlap: %+v %+v", clips[0], clips[1])
	}
}

func TestSelectInsufficientSegmentsWhenAllBelowMinScore(t *testing.T) {
	analyzed := []models.AnalyzedSegment{seg(0, 5, 0.1), seg(10, 15, 0.2)}
	opts := models.Options{ClipDuration: 10, ClipCount: 5, MinScore: 0.9}

	_, err := Select(analyzed, 300, opts)
	if engineerr.CodeOf(err) != engineerr.InsufficientSegments {
		t.Errorf("expected InsufficientSegments, got %v", err)
	}
}

func TestSelectClipIDsAreSequential(t *testing.T) {
	analyzed := []models.AnalyzedSegment{seg(0, 5, 0.9), seg(100, 105, 0.8)}
	opts := models.Options{ClipDuration: 10, ClipCount: 5, MinScore: 0}

	clips, err := Select(analyzed, 300, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range clips {
		want := "clip-00" + string(rune('0'+i))
		if c.ClipID != want {
			t.Errorf("clip %d: expected ClipID %q, got %q", i, want, c.ClipID)
		}
	}
}

func TestExpandWindowBoundaryPushAtStart(t *testing.T) {
	start, end := expandWindow(1, 2, 20, 300)
	if end-start != 20 {
		t.Errorf("expected full target duration near the start boundary, got %v", end-start)
	}
	if start != 0 {
		t.Errorf("expected start clamped to 0, got %v", start)
	}
}

func TestExpandWindowBoundaryPushAtEnd(t *testing.T) {
	start, end := expandWindow(298, 299, 20, 300)
	if end-start != 20 {
		t.Errorf("expected full target duration near the end boundary, got %v", end-start)
	}
	if end != 300 {
		t.Errorf("expected end clamped to assetDuration, got %v", end)
	}
}

func TestExpandWindowOversizedSegmentTrimsFromStart(t *testing.T) {
	start, end := expandWindow(10, 100, 60, 300)
	if start != 10 || end != 70 {
		t.Errorf("expected [10,70] for an oversized segment trimmed from its start, got [%v,%v]", start, end)
	}
}

func TestExpandWindowWholeAssetWhenTargetExceedsAsset(t *testing.T) {
	start, end := expandWindow(1, 2, 500, 300)
	if start != 0 || end != 300 {
		t.Errorf("expected full-asset window when target exceeds asset duration, got [%v,%v]", start, end)
	}
}
