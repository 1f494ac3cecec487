// Package acquire implements the Acquisition stage (spec §4.A): turning a
// Source (hosted-url, http-url, or upload) into a local file the rest of
// the pipeline can probe and process.
package acquire

import (
	"context"
	"fmt"

	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

// Adapter fetches one Source into destDir, naming the local file after
// jobID (spec §6: "uploads/<jobId>.<ext>"), and returns its path.
type Adapter interface {
	Fetch(ctx context.Context, source models.Source, jobID, destDir string) (string, error)
}

// Dispatcher routes a Source to the adapter registered for its Type.
type Dispatcher struct {
	adapters map[models.SourceType]Adapter
}

func NewDispatcher(hosted, httpURL, upload Adapter) *Dispatcher {
	return &Dispatcher{
		adapters: map[models.SourceType]Adapter{
			models.SourceHostedURL: hosted,
			models.SourceHTTPURL:   httpURL,
			models.SourceUpload:    upload,
		},
	}
}

func (d *Dispatcher) Fetch(ctx context.Context, source models.Source, jobID, destDir string) (string, error) {
	adapter, ok := d.adapters[source.Type]
	if !ok {
		return "", engineerr.New(engineerr.InvalidInput, fmt.Sprintf("no acquisition adapter registered for source type %q", source.Type))
	}
	return adapter.Fetch(ctx, source, jobID, destDir)
}
