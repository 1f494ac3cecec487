package mediatool

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/bobarin/clipforge/internal/engineerr"
)

// VolumeWindow is one fixed-width slice of the asset's volume profile.
type VolumeWindow struct {
	Start   float64
	End     float64
	MeanDB  float64
	MaxDB   float64
}

// SilenceInterval is one detected stretch of near-silence.
type SilenceInterval struct {
	Start float64
	End   float64
}

var (
	lavfiMeanRe  = regexp.MustCompile(`mean_volume:\s*(-?[0-9.]+)\s*dB`)
	lavfiMaxRe   = regexp.MustCompile(`max_volume:\s*(-?[0-9.]+)\s*dB`)
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)
)

// VolumeProfile runs a single ffmpeg volumedetect pass over the whole
// asset and returns one window covering [0,duration]. The Audio Analyzer
// (spec §4.E) calls this exactly once per job regardless of segment
// count and applies this one mean/max pair to every segment — avoiding a
// per-segment ffmpeg invocation.
func (t *Tool) VolumeProfile(ctx context.Context, audioPath string, duration float64) (VolumeWindow, error) {
	args := []string{
		"-i", audioPath,
		"-af", "volumedetect",
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, _ := cmd.CombinedOutput() // ffmpeg -f null always exits nonzero-ish noise; read stderr regardless

	out := string(output)
	mean := firstMatch(lavfiMeanRe, out)
	max := firstMatch(lavfiMaxRe, out)
	if mean == "" && max == "" {
		return VolumeWindow{}, engineerr.Wrap(engineerr.AnalysisFailed, "ffmpeg volumedetect produced no output", nil)
	}

	meanDB, _ := strconv.ParseFloat(mean, 64)
	maxDB, _ := strconv.ParseFloat(max, 64)

	return VolumeWindow{Start: 0, End: duration, MeanDB: meanDB, MaxDB: maxDB}, nil
}

// SilenceTimeline runs a single ffmpeg silencedetect pass over the whole
// asset and returns every detected silence interval. Like VolumeProfile,
// called exactly once per job.
func (t *Tool) SilenceTimeline(ctx context.Context, audioPath string, noiseFloorDB float64, minSilenceDuration float64) ([]SilenceInterval, error) {
	filter := formatSilenceFilter(noiseFloorDB, minSilenceDuration)
	args := []string{
		"-i", audioPath,
		"-af", filter,
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, _ := cmd.CombinedOutput()

	return parseSilenceIntervals(string(output)), nil
}

func formatSilenceFilter(noiseFloorDB, minDuration float64) string {
	return "silencedetect=noise=" + strconv.FormatFloat(noiseFloorDB, 'f', 1, 64) + "dB:d=" + strconv.FormatFloat(minDuration, 'f', 2, 64)
}

func parseSilenceIntervals(output string) []SilenceInterval {
	starts := lavfiAllMatches(silenceStartRe, output)
	ends := lavfiAllMatches(silenceEndRe, output)

	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}

	intervals := make([]SilenceInterval, 0, n)
	for i := 0; i < n; i++ {
		s, errS := strconv.ParseFloat(starts[i], 64)
		e, errE := strconv.ParseFloat(ends[i], 64)
		if errS != nil || errE != nil {
			continue
		}
		intervals = append(intervals, SilenceInterval{Start: s, End: e})
	}
	return intervals
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func lavfiAllMatches(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
