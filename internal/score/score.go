// Package score implements the Scoring stage (spec §4.G): combining the
// three per-modality analyzer outputs into one weighted score per segment
// and ordering the result.
package score

import (
	"fmt"
	"sort"

	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/models"
)

// Combine applies the configured weights to each segment's per-modality
// scores, producing AnalyzedSegments sorted descending by combined score
// (ties broken by ascending start time, so results are deterministic).
func Combine(segments []models.TranscriptSegment, text, audio, visual []float64, weights config.AnalyzerWeights) ([]models.AnalyzedSegment, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer weights: %w", err)
	}
	if len(segments) != len(text) || len(segments) != len(audio) || len(segments) != len(visual) {
		return nil, fmt.Errorf("analyzer output length mismatch: segments=%d text=%d audio=%d visual=%d",
			len(segments), len(text), len(audio), len(visual))
	}

	out := make([]models.AnalyzedSegment, len(segments))
	for i, seg := range segments {
		combined := weights.Text*text[i] + weights.Audio*audio[i] + weights.Visual*visual[i]
		out[i] = models.AnalyzedSegment{
			TranscriptSegment: seg,
			Scores: models.Scores{
				Text:     text[i],
				Audio:    audio[i],
				Visual:   visual[i],
				Combined: combined,
			},
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scores.Combined != out[j].Scores.Combined {
			return out[i].Scores.Combined > out[j].Scores.Combined
		}
		return out[i].Start < out[j].Start
	})

	return out, nil
}
