package mediatool

import "testing"

func TestParseSilenceIntervals(t *testing.T) {
	output := `
[silencedetect @ 0x1] silence_start: 1.5
[silencedetect @ 0x1] silence_end: 3.25 | silence_duration: 1.75
[silencedetect @ 0x1] silence_start: 10
[silencedetect @ 0x1] silence_end: 10.8 | silence_duration: 0.8
`
	intervals := parseSilenceIntervals(output)
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %+v", len(intervals), intervals)
	}
	if intervals[0].Start != 1.5 || intervals[0].End != 3.25 {
		t.Errorf("unexpected first interval: %+v", intervals[0])
	}
	if intervals[1].Start != 10 || intervals[1].End != 10.8 {
		t.Errorf("unexpected second interval: %+v", intervals[1])
	}
}

func TestParseSilenceIntervalsUnmatchedStartIsDropped(t *testing.T) {
	output := `[silencedetect @ 0x1] silence_start: 5.0`
	intervals := parseSilenceIntervals(output)
	if len(intervals) != 0 {
		t.Errorf("expected no intervals for an unmatched trailing silence_start, got %+v", intervals)
	}
}

func TestFormatSilenceFilter(t *testing.T) {
	got := formatSilenceFilter(-35, 0.3)
	want := "silencedetect=noise=-35.0dB:d=0.30"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFirstMatch(t *testing.T) {
	if got := firstMatch(lavfiMeanRe, "mean_volume: -18.4 dB"); got != "-18.4" {
		t.Errorf("expected -18.4, got %q", got)
	}
	if got := firstMatch(lavfiMeanRe, "no match here"); got != "" {
		t.Errorf("expected empty string for no match, got %q", got)
	}
}
