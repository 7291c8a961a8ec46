package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one file to be ingested and extracted.
type Job struct {
	ID          uuid.UUID
	Path        string
	RuleSetID   uuid.UUID // uuid.Nil selects the newest rule set
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) (Job, error)
	Shutdown(ctx context.Context)
}
