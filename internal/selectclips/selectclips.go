// Package selectclips implements the Clip Selector (spec §4.H pre-encode
// stage): filtering scored segments by minScore, expanding the
// highest-scoring ones to the requested clip duration, and de-duplicating
// overlapping windows until clipCount clips are chosen (or the candidate
// pool runs dry).
package selectclips

import (
	"fmt"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// Select turns scored, sorted segments into a final list of non-overlapping
// clip definitions. analyzed must already be sorted descending by
// Scores.Combined with ties broken by ascending Start (score.Combine's
// contract).
func Select(analyzed []models.AnalyzedSegment, assetDuration float64, opts models.Options) ([]models.ClipDefinition, error) {
	candidates := filterByMinScore(analyzed, opts.MinScore)

	var selected []models.ClipDefinition
	for _, seg := range candidates {
		if len(selected) >= opts.ClipCount {
			break
		}

		start, end := expandWindow(seg.Start, seg.End, float64(opts.ClipDuration), assetDuration)
		if overlapsAny(start, end, selected) {
			continue
		}

		selected = append(selected, models.ClipDefinition{
			StartTime: start,
			EndTime:   end,
			Duration:  end - start,
			Score:     seg.Scores.Combined,
			Text:      seg.Text,
			Scores:    seg.Scores,
		})
	}

	if len(selected) == 0 {
		return nil, engineerr.New(engineerr.InsufficientSegments, fmt.Sprintf("no segments scored at or above minScore=%.3f", opts.MinScore))
	}

	for i := range selected {
		selected[i].ClipID = fmt.Sprintf("clip-%03d", i)
	}

	return selected, nil
}

func filterByMinScore(analyzed []models.AnalyzedSegment, minScore float64) []models.AnalyzedSegment {
	out := make([]models.AnalyzedSegment, 0, len(analyzed))
	for _, seg := range analyzed {
		if seg.Scores.Combined >= minScore {
			out = append(out, seg)
		}
	}
	return out
}

// expandWindow grows [segStart, segEnd] to targetDuration. If the segment
// is already at or beyond the target duration, it is trimmed forward from
// its start (spec §4.H step 4: "if e−s ≥ D, use [s, s+D]") rather than
// centered. Otherwise it is padded symmetrically around the segment's
// midpoint, then clipped into [0, assetDuration]. If clamping one edge
// leaves the window shorter than targetDuration, the unconstrained edge
// is pushed out to make up the difference (so a segment near the very
// start or end of the asset still gets a full-length clip whenever the
// asset is long enough to hold one).
func expandWindow(segStart, segEnd, targetDuration, assetDuration float64) (float64, float64) {
	if targetDuration >= assetDuration {
		return 0, assetDuration
	}

	if segEnd-segStart >= targetDuration {
		start := segStart
		end := segStart + targetDuration
		if end > assetDuration {
			end = assetDuration
			start = end - targetDuration
		}
		if start < 0 {
			start = 0
		}
		return start, end
	}

	mid := (segStart + segEnd) / 2
	half := targetDuration / 2
	start := mid - half
	end := mid + half

	if start < 0 {
		deficit := -start
		start = 0
		end += deficit
	}
	if end > assetDuration {
		deficit := end - assetDuration
		end = assetDuration
		start -= deficit
	}
	if start < 0 {
		start = 0
	}
	if end > assetDuration {
		end = assetDuration
	}

	return start, end
}

// overlapsAny reports whether [start,end) intersects any already-selected
// clip's open interval — touching endpoints are not considered overlap.
func overlapsAny(start, end float64, selected []models.ClipDefinition) bool {
	for _, s := range selected {
		if start < s.EndTime && end > s.StartTime {
			return true
		}
	}
	return false
}
