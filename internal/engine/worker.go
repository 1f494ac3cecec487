package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
	"github.com/bobarin/clipforge/internal/score"
	"github.com/bobarin/clipforge/internal/selectclips"
)

// processJob drives one job through every pipeline stage (spec §4.J),
// updating its status/progress as it goes and honoring a tombstone set by
// DeleteJob while the job was in flight. Every stage writes into one of
// the four flat top-level directories under cfg.StorageDir (spec §6):
// uploads/, processing/, clips/, frames/ — there is no per-job work
// directory, since every filename already carries the job ID.
func (e *Engine) processJob(ctx context.Context, jobID string) {
	job := e.lookup(jobID)
	if job == nil {
		log.Printf("[engine] job %s vanished before processing", jobID)
		return
	}

	if e.checkTombstoned(job) {
		return
	}

	sourcePath, meta, err := e.acquireAndValidate(ctx, job)
	if err != nil {
		e.fail(job, err)
		return
	}
	if e.checkTombstoned(job) {
		removeIfExists(sourcePath)
		return
	}

	wavPath, transcript, err := e.transcribeStage(ctx, job, sourcePath)
	if err != nil {
		e.fail(job, err)
		return
	}
	if e.checkTombstoned(job) {
		removeIfExists(sourcePath)
		removeIfExists(wavPath)
		return
	}

	analyzed, err := e.analyzeStage(ctx, job, sourcePath, wavPath, meta.Duration, transcript)
	if err != nil {
		e.fail(job, err)
		return
	}
	if e.checkTombstoned(job) {
		removeIfExists(sourcePath)
		removeIfExists(wavPath)
		return
	}

	e.setProgress(job, models.StatusGenerating, models.ProgressSelecting)
	defs, err := selectclips.Select(analyzed, meta.Duration, job.Input.Options)
	if err != nil {
		e.fail(job, err)
		return
	}

	clipsDir := filepath.Join(e.cfg.StorageDir, "clips")
	clips, err := e.encoder.EncodeAll(ctx, jobID, sourcePath, defs, job.Input.Options.Orientation, clipsDir)
	if err != nil {
		e.fail(job, err)
		return
	}

	e.complete(job, meta, clips)

	if e.checkTombstoned(job) {
		removeIfExists(sourcePath)
		removeIfExists(wavPath)
		e.dropTombstonedOutput(job)
	}
}

func (e *Engine) lookup(jobID string) *models.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.jobs[jobID]
}

// checkTombstoned reports whether DeleteJob marked job for removal while
// it was in flight. Callers that observe true have already had their
// in-progress work made moot and should stop without writing further
// status updates.
func (e *Engine) checkTombstoned(job *models.Job) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return job.Tombstoned
}

// dropTombstonedOutput removes a tombstoned job's clip files once it
// reaches a terminal state. DeleteJob already removed the job's map entry
// synchronously, so this operates on the worker's own *models.Job
// reference rather than looking the job back up by ID.
func (e *Engine) dropTombstonedOutput(job *models.Job) {
	removeClipFiles(job.Clips)
}

func (e *Engine) setProgress(job *models.Job, status models.Status, progress int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	job.Status = status
	job.Progress = progress
	job.UpdatedAt = timeNow()
}

func (e *Engine) fail(job *models.Job, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	job.Status = models.StatusFailed
	job.Error = err.Error()
	job.UpdatedAt = timeNow()
	job.CompletedAt = job.UpdatedAt
	log.Printf("[engine] job %s failed (%s): %v", job.ID, engineerr.CodeOf(err), err)
}

func (e *Engine) complete(job *models.Job, meta models.VideoMetadata, clips []models.GeneratedClip) {
	e.mu.Lock()
	defer e.mu.Unlock()
	job.Status = models.StatusCompleted
	job.Progress = models.ProgressCompleted
	job.UpdatedAt = timeNow()
	job.CompletedAt = job.UpdatedAt
	job.Clips = clips
	job.Metadata.DurationSeconds = meta.Duration
	job.Metadata.FileSizeBytes = meta.FileSize
	job.Metadata.ClipsGenerated = len(clips)
	if len(clips) > 0 {
		top := clips[0].Score
		for _, c := range clips {
			if c.Score > top {
				top = c.Score
			}
		}
		job.Metadata.TopScore = top
	}
}

// acquireAndValidate fetches the job's source into uploads/<jobId>.<ext>
// (spec §6) and validates duration/size limits.
func (e *Engine) acquireAndValidate(ctx context.Context, job *models.Job) (string, models.VideoMetadata, error) {
	e.setProgress(job, models.StatusDownloading, models.ProgressDownloading)

	uploadsDir := filepath.Join(e.cfg.StorageDir, "uploads")
	sourcePath, err := e.acquirer.Fetch(ctx, job.Input.Source, job.ID, uploadsDir)
	if err != nil {
		return "", models.VideoMetadata{}, err
	}

	meta, err := e.mediaTool.Validate(ctx, sourcePath)
	if err != nil {
		return "", models.VideoMetadata{}, err
	}

	if meta.Duration > e.cfg.MaxDuration {
		return "", models.VideoMetadata{}, engineerr.New(engineerr.VideoTooLong,
			fmt.Sprintf("source duration %.1fs exceeds limit of %.1fs", meta.Duration, e.cfg.MaxDuration))
	}
	if meta.FileSize > e.cfg.MaxFileSize {
		return "", models.VideoMetadata{}, engineerr.New(engineerr.FileTooLarge,
			fmt.Sprintf("source size %d bytes exceeds limit of %d", meta.FileSize, e.cfg.MaxFileSize))
	}

	return sourcePath, meta, nil
}

// transcribeStage extracts the speech track to processing/<jobId>.wav
// (spec §6) and transcribes it.
func (e *Engine) transcribeStage(ctx context.Context, job *models.Job, sourcePath string) (string, models.TranscriptResult, error) {
	e.setProgress(job, models.StatusTranscribing, models.ProgressTranscribing)

	processingDir := filepath.Join(e.cfg.StorageDir, "processing")
	if err := os.MkdirAll(processingDir, 0o755); err != nil {
		return "", models.TranscriptResult{}, engineerr.Wrap(engineerr.TranscriptionFailed, "failed to create processing directory", err)
	}

	wavPath, err := e.mediaTool.ExtractSpeechAudio(ctx, sourcePath, processingDir)
	if err != nil {
		return "", models.TranscriptResult{}, err
	}

	transcript, err := e.transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return "", models.TranscriptResult{}, err
	}
	return wavPath, transcript, nil
}

// analyzeStage runs the three analyzers in parallel (spec §4.D/E/F run
// concurrently, converging before scoring), the same errgroup fan-out
// shape as the teacher's worker pipelines A/B converging before render.
func (e *Engine) analyzeStage(ctx context.Context, job *models.Job, sourcePath, wavPath string, duration float64, transcript models.TranscriptResult) ([]models.AnalyzedSegment, error) {
	e.setProgress(job, models.StatusAnalyzing, models.ProgressAnalyzing)

	var textScores, audioScores, visualScores []float64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		textScores = make([]float64, len(transcript.Segments))
		for i, seg := range transcript.Segments {
			textScores[i] = e.textAn.Score(seg.Text)
		}
		return nil
	})

	g.Go(func() error {
		scores, err := e.audioAn.Score(gctx, wavPath, duration, transcript.Segments)
		if err != nil {
			return err
		}
		audioScores = scores
		return nil
	})

	g.Go(func() error {
		scores, err := e.visualAn.Score(gctx, sourcePath, duration, transcript.Segments)
		if err != nil {
			return err
		}
		visualScores = scores
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, engineerr.Wrap(engineerr.AnalysisFailed, "analyzer stage failed", err)
	}

	return score.Combine(transcript.Segments, textScores, audioScores, visualScores, e.cfg.AnalyzerWeights)
}

// removeIfExists deletes path if it exists, ignoring a not-found error.
func removeIfExists(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[engine] failed to remove %s: %v", path, err)
	}
}
