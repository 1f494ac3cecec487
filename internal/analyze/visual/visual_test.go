package visual

import (
	"context"
	"math"
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) ExtractFrame(ctx context.Context, videoPath string, atSeconds float64, outPath string) error {
	f.calls++
	return nil
}

func TestScoreWithoutAIUsesPositionalHeuristic(t *testing.T) {
	a := New(&fakeExtractor{}, nil, t.TempDir())

	segments := []models.TranscriptSegment{
		{Start: 0, End: 5},     // opening band of a 300s asset (base 0.5)
		{Start: 145, End: 150}, // middle band of a 300s asset (base 0.7)
	}

	scores, err := a.Score(context.Background(), "video.mp4", 300, segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score %v out of [0,1] range", s)
		}
	}
}

func TestScoreNeverCallsExtractorWithoutAI(t *testing.T) {
	extractor := &fakeExtractor{}
	a := New(extractor, nil, t.TempDir())

	segments := []models.TranscriptSegment{{Start: 0, End: 5}, {Start: 10, End: 15}}
	if _, err := a.Score(context.Background(), "video.mp4", 300, segments); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("expected no frame extraction when AI is disabled, got %d calls", extractor.calls)
	}
}

func TestBuildSceneTimelineStaysWithinBounds(t *testing.T) {
	a := New(&fakeExtractor{}, nil, t.TempDir())
	timeline := buildSceneTimeline(30, a.rng)
	for _, point := range timeline {
		if point < 0 || point > 30 {
			t.Errorf("scene timeline point %v out of [0,30] bounds", point)
		}
	}
}

func TestSceneCountInSegmentCountsOnlyWithinRange(t *testing.T) {
	seg := models.TranscriptSegment{Start: 10, End: 20}
	count := sceneCountInSegment(seg, []float64{5, 12, 18, 25})
	if count != 2 {
		t.Errorf("expected 2 scene changes within [10,20], got %d", count)
	}
}

func TestSceneAndMotionScoreMatchesDocumentedFormula(t *testing.T) {
	seg := models.TranscriptSegment{Start: 0, End: 20}
	sceneScore, motionScore := sceneAndMotionScore(seg, 3)

	wantScene := math.Min(1, 3/math.Max(1, 20.0/10))
	wantMotion := math.Min(1, (3.0/20.0)*10)

	if math.Abs(sceneScore-wantScene) > 1e-9 {
		t.Errorf("sceneScore = %v, want %v", sceneScore, wantScene)
	}
	if math.Abs(motionScore-wantMotion) > 1e-9 {
		t.Errorf("motionScore = %v, want %v", motionScore, wantMotion)
	}
}

func TestSceneAndMotionScoreZeroDurationSegment(t *testing.T) {
	seg := models.TranscriptSegment{Start: 10, End: 10}
	sceneScore, motionScore := sceneAndMotionScore(seg, 5)
	if sceneScore != 0 || motionScore != 0 {
		t.Errorf("expected both terms 0 for a zero-duration segment, got scene=%v motion=%v", sceneScore, motionScore)
	}
}

func TestFaceCountScoreThresholds(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0.3},
		{1, 0.7},
		{2, 0.7},
		{3, 1.0},
		{10, 1.0},
	}
	for _, c := range cases {
		if got := faceCountScore(c.count); got != c.want {
			t.Errorf("faceCountScore(%d) = %v, want %v", c.count, got, c.want)
		}
	}
}

func TestPositionalHeuristicDocumentedBands(t *testing.T) {
	rng := New(&fakeExtractor{}, nil, t.TempDir()).rng

	for i := 0; i < 200; i++ {
		opening := positionalHeuristic(models.TranscriptSegment{Start: 0, End: 1}, 100, rng)
		if opening < 0.4 || opening > 0.6 {
			t.Fatalf("opening-band score %v outside [0.5±0.1] envelope", opening)
		}

		middle := positionalHeuristic(models.TranscriptSegment{Start: 49, End: 51}, 100, rng)
		if middle < 0.6 || middle > 0.8 {
			t.Fatalf("middle-band score %v outside [0.7±0.1] envelope", middle)
		}

		closing := positionalHeuristic(models.TranscriptSegment{Start: 99, End: 100}, 100, rng)
		if closing < 0.5 || closing > 0.7 {
			t.Fatalf("closing-band score %v outside [0.6±0.1] envelope", closing)
		}
	}
}

func TestPositionalHeuristicNeverBelowFloor(t *testing.T) {
	rng := New(&fakeExtractor{}, nil, t.TempDir()).rng
	for i := 0; i < 500; i++ {
		if got := positionalHeuristic(models.TranscriptSegment{Start: 0, End: 1}, 100, rng); got < 0.3 {
			t.Fatalf("score %v dropped below the documented 0.3 floor", got)
		}
	}
}
