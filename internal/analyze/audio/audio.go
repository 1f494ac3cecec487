// Package audio implements the Audio Analyzer (spec §4.E): it probes the
// whole asset's volume profile and silence timeline exactly once per job
// (not once per segment), then scores each segment against that shared
// baseline, optionally sharpened by a batched AI emotion pass.
package audio

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/bobarin/clipforge/internal/aiproc"
	"github.com/bobarin/clipforge/internal/mediatool"
	"github.com/bobarin/clipforge/internal/models"
)

const (
	noiseFloorDB       = -40.0
	minSilenceDuration = 0.5
	aiBatchSize        = 10
)

// Prober is the subset of mediatool.Tool the analyzer needs; declared as
// an interface so tests can substitute a fake without touching ffmpeg.
type Prober interface {
	VolumeProfile(ctx context.Context, audioPath string, duration float64) (mediatool.VolumeWindow, error)
	SilenceTimeline(ctx context.Context, audioPath string, noiseFloorDB, minSilenceDuration float64) ([]mediatool.SilenceInterval, error)
}

// Analyzer scores transcript segments on audio energy/emotion cues.
type Analyzer struct {
	prober Prober
	ai     *aiproc.Processor // nil or Enabled()==false disables the AI pass
}

func New(prober Prober, ai *aiproc.Processor) *Analyzer {
	return &Analyzer{prober: prober, ai: ai}
}

// Score computes the audio score for every segment of a single asset. It
// invokes the media tool exactly twice total (one VolumeProfile call, one
// SilenceTimeline call) regardless of how many segments there are.
func (a *Analyzer) Score(ctx context.Context, audioPath string, duration float64, segments []models.TranscriptSegment) ([]float64, error) {
	volume, err := a.prober.VolumeProfile(ctx, audioPath, duration)
	if err != nil {
		return nil, err
	}
	silence, err := a.prober.SilenceTimeline(ctx, audioPath, noiseFloorDB, minSilenceDuration)
	if err != nil {
		return nil, err
	}

	emotion := make([]float64, len(segments))
	for i := range emotion {
		emotion[i] = 0.5
	}
	if a.ai != nil && a.ai.Enabled() {
		if scores, err := a.batchEmotion(ctx, segments); err == nil {
			emotion = scores
		}
		// AI is best-effort: a batch that fails keeps the neutral 0.5 for
		// its own segments rather than failing the analyzer.
	}

	out := make([]float64, len(segments))
	for i, seg := range segments {
		out[i] = segmentScore(seg, volume, silence, emotion[i])
	}
	return out, nil
}

// segmentScore implements spec §4.E's weighted formula:
//
//	0.3·energy + 0.2·dynamicRange + 0.2·nonSilence + 0.1·speechRate + 0.2·emotion
func segmentScore(seg models.TranscriptSegment, volume mediatool.VolumeWindow, silence []mediatool.SilenceInterval, emotion float64) float64 {
	energy := clamp01((volume.MeanDB + 60) / 50)
	dynamicRange := math.Min(1, (volume.MaxDB-volume.MeanDB)/25)

	duration := seg.End - seg.Start
	var nonSilence float64
	if duration > 0 {
		nonSilence = clamp01(1 - overlapWithSilence(seg.Start, seg.End, silence)/duration)
	}

	rate := speechRate(seg)

	return clamp01(0.3*energy + 0.2*dynamicRange + 0.2*nonSilence + 0.1*rate + 0.2*emotion)
}

// speechRate maps words-per-minute to [0,1] via spec §4.E's piecewise-linear
// table. A segment with end ≤ start can't yield a rate at all (0.5,
// neutral); empty text has no speech signal to rate (0.3).
func speechRate(seg models.TranscriptSegment) float64 {
	if seg.End <= seg.Start {
		return 0.5
	}
	words := wordCount(seg.Text)
	if words == 0 {
		return 0.3
	}

	wpm := float64(words) * 60 / (seg.End - seg.Start)

	switch {
	case wpm < 100:
		return lerp(wpm, 0, 100, 0.2, 0.4)
	case wpm < 120:
		return lerp(wpm, 100, 120, 0.4, 0.5)
	case wpm < 160:
		return lerp(wpm, 120, 160, 0.5, 0.7)
	case wpm < 200:
		return lerp(wpm, 160, 200, 0.7, 0.9)
	default:
		return lerp(math.Min(wpm, 260), 200, 260, 0.9, 1.0)
	}
}

// lerp linearly interpolates v from [inLo,inHi] into [outLo,outHi], clamped
// to the output range at either end.
func lerp(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi <= inLo {
		return outLo
	}
	t := (v - inLo) / (inHi - inLo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return outLo + t*(outHi-outLo)
}

func wordCount(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	}))
}

func overlapWithSilence(start, end float64, intervals []mediatool.SilenceInterval) float64 {
	total := 0.0
	for _, iv := range intervals {
		o := overlap(start, end, iv.Start, iv.End)
		total += o
	}
	return total
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	lo := math.Max(aStart, bStart)
	hi := math.Min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// batchEmotion scores segment text for emotional intensity via the AI
// co-processor, in batches of at most aiBatchSize (spec §4.E / §4.K).
func (a *Analyzer) batchEmotion(ctx context.Context, segments []models.TranscriptSegment) ([]float64, error) {
	out := make([]float64, 0, len(segments))
	instruction := "You are scoring spoken narration for emotional intensity and vocal energy as it would be delivered aloud."

	for start := 0; start < len(segments); start += aiBatchSize {
		end := start + aiBatchSize
		if end > len(segments) {
			end = len(segments)
		}
		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = segments[i].Text
		}
		scores, err := a.ai.TextBatch(ctx, texts, instruction)
		if err != nil {
			scores = make([]float64, len(texts))
			for i := range scores {
				scores[i] = 0.5
			}
		}
		out = append(out, scores...)
	}
	return out, nil
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
