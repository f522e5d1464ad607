package scheduler

import (
	"context"

	"github.com/go-sif/progressive/query"
)

// Executor runs Jobs, producing their Partials
type Executor interface {
	Execute(ctx context.Context, job *query.Job) (*query.Partial, error)
}

// LocalExecutor runs Jobs in the current process
type LocalExecutor struct{}

// Execute runs a Job
func (e LocalExecutor) Execute(ctx context.Context, job *query.Job) (*query.Partial, error) {
	return job.Run(ctx)
}
