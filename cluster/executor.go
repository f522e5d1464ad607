package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-sif/progressive/query"
	"github.com/hashicorp/go-multierror"
	"google.golang.org/grpc"
)

// RemoteExecutor runs Jobs on a set of Workers, assigning them round-robin
type RemoteExecutor struct {
	opts  *ExecutorOptions
	conns []*grpc.ClientConn
	next  int
	lock  sync.Mutex
}

// CreateRemoteExecutor dials every Worker in opts
func CreateRemoteExecutor(opts *ExecutorOptions) (*RemoteExecutor, error) {
	if opts == nil || len(opts.Workers) == 0 {
		return nil, fmt.Errorf("ExecutorOptions.Workers must name at least one worker")
	}
	ensureDefaultExecutorOptionsValues(opts)
	e := &RemoteExecutor{opts: opts}
	for _, addr := range opts.Workers {
		conn, err := dialWorker(addr)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.conns = append(e.conns, conn)
	}
	return e, nil
}

func dialWorker(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("fail to dial %s: %v", addr, err)
	}
	return conn, nil
}

// Execute runs job on the next Worker
func (e *RemoteExecutor) Execute(ctx context.Context, job *query.Job) (*query.Partial, error) {
	submission := job.Query.Submission()
	if submission == nil {
		return nil, fmt.Errorf("%s was not constructed from a submission and cannot run remotely", job.Query.ID())
	}
	e.lock.Lock()
	if len(e.conns) == 0 {
		e.lock.Unlock()
		return nil, fmt.Errorf("remote executor is closed")
	}
	worker := e.next % len(e.conns)
	e.next++
	conn := e.conns[worker]
	e.lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.opts.RPCTimeout)
	defer cancel()
	e.opts.Logger.Debugf("Dispatching job %d of %s to %s", job.Index, job.Query.ID(), e.opts.Workers[worker])
	data, err := runJob(ctx, conn, &jobRequest{
		QueryID:    job.Query.ID(),
		Submission: submission,
		Index:      job.Index,
		Partition:  job.Partition.Index,
		Path:       job.Partition.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("job %d of %s failed on %s: %w", job.Index, job.Query.ID(), e.opts.Workers[worker], err)
	}
	return query.PartialFromBytes(data)
}

// Close all connections to Workers
func (e *RemoteExecutor) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	var errs *multierror.Error
	for _, conn := range e.conns {
		if err := conn.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	e.conns = nil
	return errs.ErrorOrNil()
}
