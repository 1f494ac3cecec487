package audio

import (
	"context"
	"math"
	"testing"

	"github.com/bobarin/clipforge/internal/mediatool"
	"github.com/bobarin/clipforge/internal/models"
)

type fakeProber struct {
	volumeCalls  int
	silenceCalls int
	volume       mediatool.VolumeWindow
	silence      []mediatool.SilenceInterval
}

func (f *fakeProber) VolumeProfile(ctx context.Context, audioPath string, duration float64) (mediatool.VolumeWindow, error) {
	f.volumeCalls++
	return f.volume, nil
}

func (f *fakeProber) SilenceTimeline(ctx context.Context, audioPath string, noiseFloorDB, minSilenceDuration float64) ([]mediatool.SilenceInterval, error) {
	f.silenceCalls++
	return f.silence, nil
}

func TestScoreInvokesProberExactlyOnceEach(t *testing.T) {
	prober := &fakeProber{volume: mediatool.VolumeWindow{MeanDB: -20, MaxDB: -5}}
	a := New(prober, nil)

	segments := make([]models.TranscriptSegment, 25)
	for i := range segments {
		segments[i] = models.TranscriptSegment{Start: float64(i) * 5, End: float64(i)*5 + 4, Text: "hello there friend"}
	}

	scores, err := a.Score(context.Background(), "audio.wav", 200, segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != len(segments) {
		t.Errorf("expected %d scores, got %d", len(segments), len(scores))
	}
	if prober.volumeCalls != 1 {
		t.Errorf("expected exactly 1 VolumeProfile call regardless of segment count, got %d", prober.volumeCalls)
	}
	if prober.silenceCalls != 1 {
		t.Errorf("expected exactly 1 SilenceTimeline call regardless of segment count, got %d", prober.silenceCalls)
	}
}

func TestSegmentScoreMatchesDocumentedFormula(t *testing.T) {
	volume := mediatool.VolumeWindow{MeanDB: -20, MaxDB: -5}
	silence := []mediatool.SilenceInterval{{Start: 0, End: 2}}
	seg := models.TranscriptSegment{Start: 0, End: 10, Text: "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty twentyone twentytwo"}
	emotion := 0.7

	energy := clamp01((-20.0 + 60) / 50)     // 0.8
	dynamicRange := math.Min(1, (15.0)/25)   // 0.6
	nonSilence := clamp01(1 - 2.0/10)        // 0.8
	rate := speechRate(seg)                  // depends on word count
	want := clamp01(0.3*energy + 0.2*dynamicRange + 0.2*nonSilence + 0.1*rate + 0.2*emotion)

	got := segmentScore(seg, volume, silence, emotion)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("segmentScore() = %v, want %v (formula mismatch)", got, want)
	}
}

func TestSpeechRateDegenerateEndBeforeStart(t *testing.T) {
	seg := models.TranscriptSegment{Start: 10, End: 5, Text: "something"}
	if got := speechRate(seg); got != 0.5 {
		t.Errorf("expected 0.5 for end<=start, got %v", got)
	}
}

func TestSpeechRateDegenerateEmptyText(t *testing.T) {
	seg := models.TranscriptSegment{Start: 0, End: 10, Text: ""}
	if got := speechRate(seg); got != 0.3 {
		t.Errorf("expected 0.3 for empty text, got %v", got)
	}
}

func TestSpeechRatePiecewiseBreakpoints(t *testing.T) {
	mkSeg := func(words int, seconds float64) models.TranscriptSegment {
		text := ""
		for i := 0; i < words; i++ {
			text += "w "
		}
		return models.TranscriptSegment{Start: 0, End: seconds, Text: text}
	}

	cases := []struct {
		name  string
		words int
		secs  float64
		want  float64
	}{
		{"exactly 100wpm", 100, 60, 0.4},
		{"exactly 120wpm", 120, 60, 0.5},
		{"exactly 160wpm", 160, 60, 0.7},
		{"exactly 200wpm", 200, 60, 0.9},
		{"260wpm caps at 1.0", 260, 60, 1.0},
		{"above 260wpm still capped", 400, 60, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := speechRate(mkSeg(c.words, c.secs))
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("speechRate(%d words / %vs) = %v, want %v", c.words, c.secs, got, c.want)
			}
		})
	}
}

func TestScorePenalizesSilenceOverlap(t *testing.T) {
	prober := &fakeProber{
		volume:  mediatool.VolumeWindow{MeanDB: -20, MaxDB: 0},
		silence: []mediatool.SilenceInterval{{Start: 0, End: 10}},
	}
	a := New(prober, nil)

	segments := []models.TranscriptSegment{
		{Start: 0, End: 10, Text: "quiet stretch"},  // fully silent
		{Start: 20, End: 30, Text: "quiet stretch"}, // not silent
	}

	scores, err := a.Score(context.Background(), "audio.wav", 60, segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] >= scores[1] {
		t.Errorf("expected fully-silent segment to score lower than non-silent segment: %v vs %v", scores[0], scores[1])
	}
}

func TestScoreReturnsAllWithinUnitRange(t *testing.T) {
	prober := &fakeProber{
		volume:  mediatool.VolumeWindow{MeanDB: -40, MaxDB: -1},
		silence: []mediatool.SilenceInterval{{Start: 5, End: 8}},
	}
	a := New(prober, nil)
	segments := []models.TranscriptSegment{{Start: 0, End: 20, Text: "a fairly normal amount of narration here"}}

	scores, err := a.Score(context.Background(), "audio.wav", 20, segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score %v out of [0,1] range", s)
		}
	}
}

func TestScoreUsesNeutralEmotionWithoutAI(t *testing.T) {
	prober := &fakeProber{volume: mediatool.VolumeWindow{MeanDB: -20, MaxDB: -5}}
	a := New(prober, nil)
	seg := models.TranscriptSegment{Start: 0, End: 10, Text: "some narration text here"}

	scores, err := a.Score(context.Background(), "audio.wav", 10, []models.TranscriptSegment{seg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := segmentScore(seg, prober.volume, nil, 0.5)
	if math.Abs(scores[0]-want) > 1e-9 {
		t.Errorf("Score() = %v, want %v using neutral emotion=0.5", scores[0], want)
	}
}
