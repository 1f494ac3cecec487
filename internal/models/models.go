// Package models defines the data entities shared across the clip
// generation engine: the immutable analysis request, the mutable job
// record, transcript segments, and the scored/selected/encoded clip types.
package models

import (
	"fmt"
	"net/url"
	"time"
)

// SourceType tags which variant of VideoAnalysisInput.Source is populated.
type SourceType string

const (
	SourceHostedURL SourceType = "hosted-url"
	SourceHTTPURL   SourceType = "http-url"
	SourceUpload    SourceType = "upload"
)

// Source is a tagged union over the three ways a video can be handed to the
// engine. Exactly one of URL/Path is meaningful, selected by Type.
type Source struct {
	Type SourceType `json:"type"`
	URL  string     `json:"url,omitempty"`
	Path string     `json:"path,omitempty"`
}

// Validate checks that the source is well-formed: non-empty, syntactically
// valid for URL variants, and naming a readable path for uploads. It does
// not check that remote URLs are reachable — that's the acquisition
// adapter's job.
func (s Source) Validate() error {
	switch s.Type {
	case SourceHostedURL, SourceHTTPURL:
		if s.URL == "" {
			return fmt.Errorf("source %s requires a url", s.Type)
		}
		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source url %q is not a valid absolute URL", s.URL)
		}
		if s.Type == SourceHTTPURL && u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("http-url source requires http or https scheme, got %q", u.Scheme)
		}
		return nil
	case SourceUpload:
		if s.Path == "" {
			return fmt.Errorf("source upload requires a path")
		}
		return nil
	default:
		return fmt.Errorf("unknown source type %q", s.Type)
	}
}

// Orientation selects the output aspect ratio for encoded clips.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Options carries the tunable knobs of an analysis request. Zero values
// indicate "unset" so WithDefaults can fill them in; an explicit minScore
// of 0 must be recorded with SetMinScore to survive defaulting.
type Options struct {
	ClipDuration int         `json:"clipDuration,omitempty"`
	ClipCount    int         `json:"clipCount,omitempty"`
	MinScore     float64     `json:"minScore"`
	Orientation  Orientation `json:"orientation,omitempty"`

	// minScoreSet distinguishes "default 0.6" from an explicit caller-supplied
	// 0, since both marshal as the float64 zero value.
	minScoreSet bool
}

// SetMinScore records an explicit minScore, including zero.
func (o *Options) SetMinScore(v float64) {
	o.MinScore = v
	o.minScoreSet = true
}

const (
	DefaultClipDuration = 60
	DefaultClipCount    = 5
	DefaultMinScore     = 0.6
	DefaultOrientation  = OrientationPortrait

	MinClipDuration = 30
	MaxClipDuration = 180
	MinClipCount    = 1
	MaxClipCount    = 20
)

// WithDefaults returns a copy of o with zero-valued fields replaced by the
// documented defaults, and validates the result against the §6 bounds.
func (o Options) WithDefaults() (Options, error) {
	out := o
	if out.ClipDuration == 0 {
		out.ClipDuration = DefaultClipDuration
	}
	if out.ClipCount == 0 {
		out.ClipCount = DefaultClipCount
	}
	if !out.minScoreSet && out.MinScore == 0 {
		out.MinScore = DefaultMinScore
	}
	if out.Orientation == "" {
		out.Orientation = DefaultOrientation
	}

	if out.ClipDuration < MinClipDuration || out.ClipDuration > MaxClipDuration {
		return out, fmt.Errorf("clipDuration %d out of range [%d,%d]", out.ClipDuration, MinClipDuration, MaxClipDuration)
	}
	if out.ClipCount < MinClipCount || out.ClipCount > MaxClipCount {
		return out, fmt.Errorf("clipCount %d out of range [%d,%d]", out.ClipCount, MinClipCount, MaxClipCount)
	}
	if out.MinScore < 0 || out.MinScore > 1.01 {
		// 1.01 permitted deliberately: spec §8 exercises minScore=1.01 to force InsufficientSegments.
		return out, fmt.Errorf("minScore %f out of range [0,1.01]", out.MinScore)
	}
	if out.Orientation != OrientationPortrait && out.Orientation != OrientationLandscape {
		return out, fmt.Errorf("orientation %q must be portrait or landscape", out.Orientation)
	}
	return out, nil
}

// VideoAnalysisInput is the immutable request handed to the Engine.
type VideoAnalysisInput struct {
	Source  Source  `json:"source"`
	Options Options `json:"options,omitempty"`
}

// Validate checks the invariants the engine requires before enqueuing.
func (in VideoAnalysisInput) Validate() error {
	if err := in.Source.Validate(); err != nil {
		return err
	}
	_, err := in.Options.WithDefaults()
	return err
}

// Status is a job's position in the §4.J state machine.
type Status string

const (
	StatusPending       Status = "pending"
	StatusDownloading   Status = "downloading"
	StatusTranscribing  Status = "transcribing"
	StatusAnalyzing     Status = "analyzing"
	StatusGenerating    Status = "generating"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// IsTerminal reports whether status is one of the two terminal states.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress values corresponding to each transition in spec §4.J.
const (
	ProgressPending        = 0
	ProgressDownloading    = 10
	ProgressTranscribing   = 20
	ProgressAnalyzing      = 50
	ProgressGenerating     = 70
	ProgressSelecting      = 75
	ProgressCompleted      = 100
)

// Metadata holds the job-level summary fields surfaced on status polls.
type Metadata struct {
	DurationSeconds float64 `json:"duration,omitempty"`
	FileSizeBytes   int64   `json:"fileSize,omitempty"`
	SourceType      string  `json:"sourceType,omitempty"`
	SourceURL       string  `json:"sourceUrl,omitempty"`
	TopScore        float64 `json:"topScore,omitempty"`
	ClipsGenerated  int     `json:"clipsGenerated,omitempty"`
}

// Job is the mutable process-local record tracked by the Engine. All
// mutation happens on the worker goroutine that owns the job; external
// readers must go through Engine.Status, which returns Snapshot().
type Job struct {
	ID          string
	Status      Status
	Progress    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
	Input       VideoAnalysisInput
	Metadata    Metadata
	Error       string
	Clips       []GeneratedClip

	// Tombstoned is set by DeleteJob while the worker still owns the job.
	// The worker checks it on every terminal transition and, if set,
	// deletes on-disk clip output instead of leaving it ownerless —
	// resolving the deletion-race open question in spec §9.
	Tombstoned bool
}

// Snapshot returns a deep-enough copy of the job safe for a concurrent
// reader: all scalar fields are copied by value, and the Clips slice is
// copied so a caller can't observe a partially appended slice while the
// worker is still writing to it. Grounded on link270-shrinkray's
// Job.Copy() pattern for the same "safe concurrent read of a mutable job
// record" problem.
func (j *Job) Snapshot() Job {
	out := *j
	out.Clips = append([]GeneratedClip(nil), j.Clips...)
	return out
}

// TranscriptSegment is one time-stamped fragment of speech.
type TranscriptSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptResult is the Transcriber's full output for one asset.
type TranscriptResult struct {
	Text     string              `json:"text"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
	Segments []TranscriptSegment `json:"segments"`
}

// Scores holds the per-modality and combined score for a segment, each in
// [0,1].
type Scores struct {
	Text     float64 `json:"text"`
	Audio    float64 `json:"audio"`
	Visual   float64 `json:"visual"`
	Combined float64 `json:"combined"`
}

// AnalyzedSegment extends a transcript segment with its scores.
type AnalyzedSegment struct {
	TranscriptSegment
	Scores Scores `json:"scores"`
}

// ClipDefinition is a selected, duration-expanded window of the source
// asset, prior to encoding.
type ClipDefinition struct {
	ClipID    string  `json:"clipId"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
	Scores    Scores  `json:"scores"`
}

// VideoInfo describes an encoded output file's media properties.
type VideoInfo struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	FPS     float64 `json:"fps"`
	Codec   string  `json:"codec"`
	Bitrate int64   `json:"bitrate,omitempty"`
}

// GeneratedClip is a ClipDefinition plus everything known after encoding.
type GeneratedClip struct {
	ClipDefinition
	JobID     string    `json:"jobId"`
	FilePath  string    `json:"filePath"`
	FileSize  int64     `json:"fileSize"`
	VideoInfo VideoInfo `json:"videoInfo"`
	CreatedAt time.Time `json:"createdAt"`
}

// VideoMetadata is what the Media Probe reports for a container.
type VideoMetadata struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	FileSize int64   `json:"filesize"`
	Format   string  `json:"format"`
	Codec    string  `json:"codec"`
	Bitrate  int64   `json:"bitrate"`
}
