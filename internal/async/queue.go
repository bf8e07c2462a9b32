// Package async runs the ingestion pipeline over many PDFs with a bounded
// worker pool.
package async

import (
	"context"
	"time"
)

// Job is one PDF waiting to be processed.
type Job struct {
	PDFPath     string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
