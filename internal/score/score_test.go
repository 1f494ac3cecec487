package score

import (
	"testing"

	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/models"
)

func TestCombineWeightedFormula(t *testing.T) {
	segments := []models.TranscriptSegment{
		{ID: 0, Start: 0, End: 5, Text: "a"},
		{ID: 1, Start: 5, End: 10, Text: "b"},
	}
	text := []float64{1.0, 0.0}
	audio := []float64{0.0, 1.0}
	visual := []float64{0.5, 0.5}
	weights := config.AnalyzerWeights{Text: 0.5, Audio: 0.3, Visual: 0.2}

	out, err := Combine(segments, text, audio, visual, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want0 := 0.5*1.0 + 0.3*0.0 + 0.2*0.5
	want1 := 0.5*0.0 + 0.3*1.0 + 0.2*0.5

	// segment 0 has the higher combined score (0.6 vs 0.4) so it sorts first.
	if diff := out[0].Scores.Combined - want0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("segment 0 combined score = %v, want %v", out[0].Scores.Combined, want0)
	}
	if diff := out[1].Scores.Combined - want1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("segment 1 combined score = %v, want %v", out[1].Scores.Combined, want1)
	}
}

func TestCombineSortsDescendingWithStartTiebreak(t *testing.T) {
	segments := []models.TranscriptSegment{
		{ID: 0, Start: 10, End: 15},
		{ID: 1, Start: 0, End: 5},
		{ID: 2, Start: 20, End: 25},
	}
	// All three score identically, so output order must be ascending start.
	equalScores := []float64{0.5, 0.5, 0.5}
	weights := config.AnalyzerWeights{Text: 1, Audio: 0, Visual: 0}

	out, err := Combine(segments, equalScores, equalScores, equalScores, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[0].Start != 0 || out[1].Start != 10 || out[2].Start != 20 {
		t.Errorf("expected ascending-start tiebreak ordering, got starts %v, %v, %v", out[0].Start, out[1].Start, out[2].Start)
	}
}

func TestCombineRejectsInvalidWeights(t *testing.T) {
	segments := []models.TranscriptSegment{{ID: 0, Start: 0, End: 5}}
	scores := []float64{0.5}
	weights := config.AnalyzerWeights{Text: 0.5, Audio: 0.5, Visual: 0.5}

	if _, err := Combine(segments, scores, scores, scores, weights); err == nil {
		t.Error("expected error for weights summing to more than 1")
	}
}

func TestCombineRejectsLengthMismatch(t *testing.T) {
	segments := []models.TranscriptSegment{{ID: 0, Start: 0, End: 5}, {ID: 1, Start: 5, End: 10}}
	scores := []float64{0.5}
	weights := config.AnalyzerWeights{Text: 0.34, Audio: 0.33, Visual: 0.33}

	if _, err := Combine(segments, scores, scores, scores, weights); err == nil {
		t.Error("expected error for mismatched slice lengths")
	}
}
