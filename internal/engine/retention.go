package engine

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

const retentionSweepInterval = 1 * time.Hour

// retentionSweep periodically removes terminal jobs whose CompletedAt is
// older than the configured retention window, deleting their clip files
// along with the in-memory record (spec §4.J retention).
func (e *Engine) retentionSweep(ctx context.Context) {
	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweepOnce()
		}
	}
}

func (e *Engine) sweepOnce() {
	cutoff := time.Now().AddDate(0, 0, -e.cfg.RetentionDays)

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for id, job := range e.jobs {
		if !job.Status.IsTerminal() {
			continue
		}
		if job.CompletedAt.IsZero() || job.CompletedAt.After(cutoff) {
			continue
		}
		removeClipFiles(job.Clips)
		e.removeUploadAndProcessingFiles(id)
		delete(e.jobs, id)
		removed++
	}

	if removed > 0 {
		log.Printf("[engine] retention sweep removed %d job(s) older than %d day(s)", removed, e.cfg.RetentionDays)
	}
}

// removeUploadAndProcessingFiles deletes a job's source upload and
// extracted-audio files (spec §6: "uploads/<jobId>.<ext>",
// "processing/<jobId>.wav"). Both are named by job ID alone, so a glob on
// the ID prefix finds them regardless of the source's container extension.
func (e *Engine) removeUploadAndProcessingFiles(jobID string) {
	for _, dir := range []string{"uploads", "processing"} {
		matches, err := filepath.Glob(filepath.Join(e.cfg.StorageDir, dir, jobID+".*"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			os.Remove(m)
		}
	}
}
