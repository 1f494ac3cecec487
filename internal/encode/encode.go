// Package encode implements the Encoder stage (spec §4.H): rendering each
// selected ClipDefinition to a final output file with bounded concurrency,
// mirroring the teacher's withSemaphore pattern (worker.go) via
// golang.org/x/sync/errgroup instead of a hand-rolled channel semaphore.
package encode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/mediatool"
	"github.com/bobarin/clipforge/internal/models"
)

// Cutter is the subset of mediatool.Tool the encoder needs.
type Cutter interface {
	CutClip(ctx context.Context, p mediatool.CutParams) (models.VideoInfo, error)
}

// Encoder renders ClipDefinitions to files on disk.
type Encoder struct {
	cutter Cutter
	cfg    config.ProcessingConfig
}

func New(cutter Cutter, cfg config.ProcessingConfig) *Encoder {
	return &Encoder{cutter: cutter, cfg: cfg}
}

// EncodeAll renders every clip in defs against sourcePath into outDir,
// bounding concurrency to cfg.MaxConcurrentClips. If any single clip fails,
// every output file produced so far for this job is removed and the whole
// job fails with ClipGenerationFailed (spec §4.H) — a partial clip set is
// never surfaced to the caller.
func (e *Encoder) EncodeAll(ctx context.Context, jobID string, sourcePath string, defs []models.ClipDefinition, orientation models.Orientation, outDir string) ([]models.GeneratedClip, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, engineerr.Wrap(engineerr.ClipGenerationFailed, "failed to create output directory", err)
	}

	results := make([]models.GeneratedClip, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(1, e.cfg.MaxConcurrentClips))

	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			clip, err := e.encodeOne(gctx, jobID, sourcePath, def, orientation, outDir)
			if err != nil {
				return err
			}
			results[i] = clip
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cleanupPartial(results)
		return nil, engineerr.Wrap(engineerr.ClipGenerationFailed, "clip encoding failed", err)
	}

	return results, nil
}

func (e *Encoder) encodeOne(ctx context.Context, jobID, sourcePath string, def models.ClipDefinition, orientation models.Orientation, outDir string) (models.GeneratedClip, error) {
	// spec §6: "clips/<jobId>_clip-NNN_<uuid>.mp4"
	outPath := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s.mp4", jobID, def.ClipID, uuid.New().String()))

	info, err := e.cutter.CutClip(ctx, mediatool.CutParams{
		SourcePath:   sourcePath,
		OutputPath:   outPath,
		StartTime:    def.StartTime,
		Duration:     def.Duration,
		Orientation:  orientation,
		Preset:       e.cfg.FFmpegPreset,
		CRF:          e.cfg.OutputCRF,
		AudioBitrate: e.cfg.AudioBitrate,
	})
	if err != nil {
		return models.GeneratedClip{}, fmt.Errorf("clip %s: %w", def.ClipID, err)
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return models.GeneratedClip{}, fmt.Errorf("clip %s: failed to stat rendered output: %w", def.ClipID, err)
	}

	return models.GeneratedClip{
		ClipDefinition: def,
		JobID:          jobID,
		FilePath:       outPath,
		FileSize:       stat.Size(),
		VideoInfo:      info,
		CreatedAt:      time.Now(),
	}, nil
}

func cleanupPartial(results []models.GeneratedClip) {
	for _, c := range results {
		if c.FilePath != "" {
			os.Remove(c.FilePath)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
