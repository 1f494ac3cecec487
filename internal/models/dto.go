package models

import "time"

// StatusResponse is the shape returned by a status poll (spec §6).
type StatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	Metadata    Metadata   `json:"metadata"`
}

// ToStatusResponse projects a Job snapshot into the external status DTO.
func ToStatusResponse(j Job) StatusResponse {
	resp := StatusResponse{
		JobID:     j.ID,
		Status:    j.Status,
		Progress:  j.Progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Error:     j.Error,
		Metadata:  j.Metadata,
	}
	if !j.CompletedAt.IsZero() {
		t := j.CompletedAt
		resp.CompletedAt = &t
	}
	return resp
}

// ClipResponse is one entry of the ordered clips list returned for a
// completed job (spec §6).
type ClipResponse struct {
	ClipID      string    `json:"clipId"`
	Duration    float64   `json:"duration"`
	Score       float64   `json:"score"`
	Transcript  string    `json:"transcript"`
	Scores      Scores    `json:"scores"`
	DownloadURL string    `json:"downloadUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	VideoInfo   VideoInfo `json:"videoInfo"`
}

// ToClipResponse projects a GeneratedClip into the external clip DTO.
// downloadURLFor builds the download URL/path for a clip's file path —
// injected so internal/models stays free of transport concerns.
func ToClipResponse(c GeneratedClip, downloadURLFor func(filePath string) string) ClipResponse {
	return ClipResponse{
		ClipID:      c.ClipID,
		Duration:    c.Duration,
		Score:       c.Score,
		Transcript:  truncateEllipsis(c.Text, 100),
		Scores:      c.Scores,
		DownloadURL: downloadURLFor(c.FilePath),
		CreatedAt:   c.CreatedAt,
		VideoInfo:   c.VideoInfo,
	}
}

func truncateEllipsis(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
