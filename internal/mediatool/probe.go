// Package mediatool wraps ffmpeg/ffprobe child-process invocations used
// across the pipeline: probing container metadata, extracting a
// speech-ready audio track, and cutting final clips. It replaces the
// teacher's hand-Sscanf'd ffprobe calls with gopkg.in/vansante/go-ffprobe.v2
// wrapped in cenkalti/backoff/v4 retries, grounded on livepeer-catalyst-api's
// video/probe.go.
package mediatool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// Tool probes and transforms media files via ffmpeg/ffprobe subprocesses.
type Tool struct {
	probeTimeout time.Duration
}

func New() *Tool {
	return &Tool{probeTimeout: 60 * time.Second}
}

// Probe extracts container metadata for path, retrying any failed ffprobe
// call up to 3 times with exponential backoff.
func (t *Tool) Probe(ctx context.Context, path string) (models.VideoMetadata, error) {
	var data *ffprobe.ProbeData

	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, t.probeTimeout)
		defer cancel()
		d, err := ffprobe.ProbeURL(probeCtx, path, "-loglevel", "error")
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 0
	if err := backoff.Retry(operation, backoff.WithMaxRetries(bo, 3)); err != nil {
		return models.VideoMetadata{}, engineerr.Wrap(engineerr.InvalidInput, "ffprobe failed", err)
	}

	return parseProbeData(data)
}

// Validate runs Probe and additionally enforces that a video stream exists
// (non-zero width and height); the container format is not checked. The
// engine calls this right after acquisition, before the file is handed
// further down the pipeline.
func (t *Tool) Validate(ctx context.Context, path string) (models.VideoMetadata, error) {
	meta, err := t.Probe(ctx, path)
	if err != nil {
		return meta, err
	}
	if meta.Width == 0 || meta.Height == 0 {
		return meta, engineerr.New(engineerr.InvalidInput, "no video stream found in source file")
	}
	return meta, nil
}

func parseProbeData(data *ffprobe.ProbeData) (models.VideoMetadata, error) {
	if data.Format == nil {
		return models.VideoMetadata{}, fmt.Errorf("ffprobe output missing format block")
	}

	videoStream := data.FirstVideoStream()

	var width, height int
	var codec string
	var fps float64
	if videoStream != nil {
		width = videoStream.Width
		height = videoStream.Height
		codec = videoStream.CodecName
		var err error
		fps, err = parseFrameRate(videoStream.AvgFrameRate)
		if err != nil || fps == 0 {
			fps, _ = parseFrameRate(videoStream.RFrameRate)
		}
	}

	duration := data.Format.DurationSeconds

	var size int64
	if data.Format.Size != "" {
		size, _ = strconv.ParseInt(data.Format.Size, 10, 64)
	}

	var bitrate int64
	if data.Format.BitRate != "" {
		bitrate, _ = strconv.ParseInt(data.Format.BitRate, 10, 64)
	}

	return models.VideoMetadata{
		Duration: duration,
		Width:    width,
		Height:   height,
		FPS:      fps,
		FileSize: size,
		Format:   data.Format.FormatName,
		Codec:    codec,
		Bitrate:  bitrate,
	}, nil
}

func parseFrameRate(rate string) (float64, error) {
	if rate == "" {
		return 0, nil
	}
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) != 2 {
		return strconv.ParseFloat(rate, 64)
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0, nil
	}
	return num / den, nil
}
