package testing

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/cluster"
	"github.com/go-sif/progressive/query"
	"github.com/go-sif/progressive/scheduler"
)

// LocalRunQueries runs query submissions over a Dataset on a localhost test cluster with a certain
// number of workers, returning the Queries once every one of them is done
func LocalRunQueries(ctx context.Context, dataset progressive.Dataset, submissions [][]byte, numWorkers int) (result []*query.Query, err error) {
	// start workers
	addrs := make([]string, 0, numWorkers)
	workers := make([]*cluster.Worker, 0, numWorkers)
	serving := make(chan error, numWorkers)
	defer func() {
		for _, worker := range workers {
			worker.GracefulStop()
		}
		for range workers {
			if serr := <-serving; serr != nil && err == nil {
				err = serr
			}
		}
	}()
	for i := 0; i < numWorkers; i++ {
		worker, werr := cluster.CreateWorker(dataset, nil)
		if werr != nil {
			return nil, werr
		}
		lis, lerr := net.Listen("tcp", "127.0.0.1:0")
		if lerr != nil {
			return nil, lerr
		}
		addrs = append(addrs, lis.Addr().String())
		workers = append(workers, worker)
		go func() {
			serving <- worker.Serve(lis)
		}()
	}

	// configure and start the scheduler
	executor, err := cluster.CreateRemoteExecutor(&cluster.ExecutorOptions{
		Workers:    addrs,
		RPCTimeout: time.Duration(5) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	defer executor.Close()
	s := scheduler.New(scheduler.NewRegistry(dataset), &scheduler.Conf{NumWorkers: 2 * numWorkers, Executor: executor})
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// submit and wait for completion
	for _, submission := range submissions {
		q, err := s.Submit(submission)
		if err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for _, q := range result {
		for !q.Done() {
			if ferr := s.Failures(q.ID()); ferr != nil {
				return nil, fmt.Errorf("%s failed: %w", q.ID(), ferr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
			}
		}
	}
	return result, nil
}
