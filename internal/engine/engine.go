// Package engine implements the Job Orchestrator (spec §4.J): it owns the
// process-local job map, drives each job through the pipeline stages via a
// single-worker FIFO queue, and runs the retention sweep. The worker loop
// and job-state bookkeeping are modeled directly on the teacher's
// internal/worker/worker.go processQueue/handle* shape.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobarin/clipforge/internal/acquire"
	"github.com/bobarin/clipforge/internal/aiproc"
	"github.com/bobarin/clipforge/internal/analyze/audio"
	"github.com/bobarin/clipforge/internal/analyze/text"
	"github.com/bobarin/clipforge/internal/analyze/visual"
	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/encode"
	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/mediatool"
	"github.com/bobarin/clipforge/internal/models"
	"github.com/bobarin/clipforge/internal/queue"
	"github.com/bobarin/clipforge/internal/transcribe"
)

// Engine is the top-level orchestrator wiring every pipeline stage
// together behind a single FIFO worker.
type Engine struct {
	cfg *config.Config

	mu   sync.RWMutex
	jobs map[string]*models.Job

	q           *queue.Queue
	acquirer    *acquire.Dispatcher
	mediaTool   *mediatool.Tool
	transcriber *transcribe.Transcriber
	textAn      *text.Analyzer
	audioAn     *audio.Analyzer
	visualAn    *visual.Analyzer
	encoder     *encode.Encoder
	ai          *aiproc.Processor
}

// New wires every adapter/analyzer from cfg. ai may be nil when
// cfg.AI.Enabled is false.
func New(cfg *config.Config, q *queue.Queue, ai *aiproc.Processor) *Engine {
	mt := mediatool.New()

	dispatcher := acquire.NewDispatcher(
		acquire.NewHostedAdapter(cfg.HostedExtractorBin, cfg.HostedCookiesFile),
		acquire.NewHTTPURLAdapter(cfg.MaxFileSize),
		acquire.NewUploadAdapter(),
	)

	return &Engine{
		cfg:         cfg,
		jobs:        make(map[string]*models.Job),
		q:           q,
		acquirer:    dispatcher,
		mediaTool:   mt,
		transcriber: transcribe.New(cfg.TranscriberBin),
		textAn:      text.Default(),
		audioAn:     audio.New(mt, ai),
		visualAn:    visual.New(mt, ai, filepath.Join(cfg.StorageDir, "frames")),
		encoder:     encode.New(mt, cfg.Processing),
		ai:          ai,
	}
}

// Submit validates input, creates a pending job, and enqueues it for the
// worker. It returns the new job's ID.
func (e *Engine) Submit(ctx context.Context, input models.VideoAnalysisInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", engineerr.Wrap(engineerr.InvalidInput, "invalid analysis request", err)
	}
	opts, err := input.Options.WithDefaults()
	if err != nil {
		return "", engineerr.Wrap(engineerr.InvalidInput, "invalid options", err)
	}
	input.Options = opts

	id := uuid.New().String()
	now := time.Now()
	job := &models.Job{
		ID:        id,
		Status:    models.StatusPending,
		Progress:  models.ProgressPending,
		CreatedAt: now,
		UpdatedAt: now,
		Input:     input,
		Metadata: models.Metadata{
			SourceType: string(input.Source.Type),
			SourceURL:  input.Source.URL,
		},
	}

	e.mu.Lock()
	e.jobs[id] = job
	e.mu.Unlock()

	if err := e.q.Enqueue(ctx, id); err != nil {
		return "", engineerr.Wrap(engineerr.InvalidInput, "failed to enqueue job", err)
	}

	return id, nil
}

// Status returns a safe-to-read snapshot of a job.
func (e *Engine) Status(jobID string) (models.Job, error) {
	e.mu.RLock()
	job, ok := e.jobs[jobID]
	e.mu.RUnlock()
	if !ok {
		return models.Job{}, engineerr.New(engineerr.JobNotFound, fmt.Sprintf("job %s not found", jobID))
	}
	return job.Snapshot(), nil
}

// ListJobs returns snapshots of every known job.
func (e *Engine) ListJobs() []models.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Job, 0, len(e.jobs))
	for _, j := range e.jobs {
		out = append(out, j.Snapshot())
	}
	return out
}

// DeleteJob removes a job's record from the map immediately — regardless
// of status — so it vanishes from ListJobs/Status right away (spec §8
// scenario 6: a deleted job "vanishes from the list" without waiting for
// it to finish). For a job that has already reached a terminal state, its
// clip files are removed immediately too. For a job still in flight, the
// worker goroutine holds its own reference to the same *models.Job and
// still owns the in-progress pipeline, so the on-disk cleanup can't
// happen here without racing it; instead the job is marked Tombstoned and
// the worker drops any output it produces once it reaches a terminal
// state (spec §9, resolved as tombstone-then-drop).
func (e *Engine) DeleteJob(jobID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, ok := e.jobs[jobID]
	if !ok {
		return engineerr.New(engineerr.JobNotFound, fmt.Sprintf("job %s not found", jobID))
	}

	delete(e.jobs, jobID)

	if job.Status.IsTerminal() {
		removeClipFiles(job.Clips)
		return nil
	}

	job.Tombstoned = true
	return nil
}

// Start launches the single-worker FIFO loop, modeled on the teacher's
// processQueue: dequeue, process, loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.processQueue(ctx)
	go e.retentionSweep(ctx)
}

func (e *Engine) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := e.q.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[engine] dequeue error: %v", err)
			continue
		}
		if jobID == "" {
			continue
		}

		e.processJob(ctx, jobID)
	}
}

func removeClipFiles(clips []models.GeneratedClip) {
	for _, c := range clips {
		if c.FilePath != "" {
			os.Remove(c.FilePath)
		}
	}
}
