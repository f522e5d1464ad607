// Package scheduler dispatches the Jobs of registered queries to a bounded pool of workers,
// favouring interactive queries, and merges their Partials as they complete.
package scheduler

import (
	"context"
	stderrors "errors"
	"runtime"
	"sync"
	"time"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/internal/stats"
	"github.com/go-sif/progressive/logging"
	"github.com/go-sif/progressive/query"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"
)

// Conf configures a Scheduler
type Conf struct {
	NumWorkers       int                   // NumWorkers bounds the number of concurrently executing Jobs. Defaults to the number of CPUs.
	Executor         Executor              // Executor runs Jobs. Defaults to a LocalExecutor.
	Logger           *logging.Logger       // Logger receives scheduling events. Defaults to discarding them.
	Registerer       prometheus.Registerer // Registerer receives the scheduler's metrics, if non-nil
	MetricsNamespace string                // MetricsNamespace prefixes metric names. Defaults to "progressive".
}

// queueState is the scheduling bookkeeping of a single query
type queueState struct {
	q        *query.Query
	pending  []*query.Job
	inFlight int
	failed   []*query.Job
	errs     *multierror.Error
}

// Scheduler dispatches the Jobs of the queries in a Registry. Among Running queries with
// pending Jobs, it picks the lowest priority value, then the earliest submission.
type Scheduler struct {
	conf     *Conf
	registry *Registry
	sem      *semaphore.Weighted
	stats    *stats.RunStatistics
	metrics  *metrics
	lock     sync.Mutex
	queues   map[string]*queueState
	wake     chan struct{}
	inFlight sync.WaitGroup
}

// New creates a Scheduler for the queries in registry
func New(registry *Registry, conf *Conf) *Scheduler {
	if conf == nil {
		conf = &Conf{}
	}
	if conf.NumWorkers <= 0 {
		conf.NumWorkers = runtime.NumCPU()
	}
	if conf.Executor == nil {
		conf.Executor = LocalExecutor{}
	}
	if conf.Logger == nil {
		conf.Logger = logging.Nop()
	}
	if len(conf.MetricsNamespace) == 0 {
		conf.MetricsNamespace = "progressive"
	}
	s := &Scheduler{
		conf:     conf,
		registry: registry,
		sem:      semaphore.NewWeighted(int64(conf.NumWorkers)),
		stats:    &stats.RunStatistics{},
		metrics:  newMetrics(conf.MetricsNamespace),
		queues:   make(map[string]*queueState),
		wake:     make(chan struct{}, 1),
	}
	s.metrics.register(conf.Registerer, conf.Logger)
	return s
}

// Registry returns the Registry this Scheduler dispatches from
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Stats returns runtime statistics of this Scheduler
func (s *Scheduler) Stats() progressive.RuntimeStatistics {
	return s.stats
}

// Submit registers a Query from a client submission and enqueues its Jobs
func (s *Scheduler) Submit(data []byte) (*query.Query, error) {
	q, err := s.registry.Submit(data)
	if err != nil {
		return nil, err
	}
	jobs := q.GetJobs()
	s.lock.Lock()
	s.queues[q.ID()] = &queueState{q: q, pending: jobs}
	s.updateGauges()
	s.lock.Unlock()
	s.conf.Logger.Infof("Submitted %s %s with %d jobs", q.Kind(), q.ID(), len(jobs))
	s.notify()
	return q, nil
}

// Pause stops the dispatch of a query's Jobs. Jobs already in flight still complete.
func (s *Scheduler) Pause(id string) error {
	return s.registry.Pause(id)
}

// Resume restarts the dispatch of a query's Jobs
func (s *Scheduler) Resume(id string) error {
	if err := s.registry.Resume(id); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Close unregisters a query and drops its pending Jobs. Partials of its in-flight Jobs are discarded.
func (s *Scheduler) Close(id string) error {
	if err := s.registry.Close(id); err != nil {
		return err
	}
	s.lock.Lock()
	delete(s.queues, id)
	s.updateGauges()
	s.lock.Unlock()
	s.conf.Logger.Infof("Closed %s", id)
	return nil
}

// Pending returns the number of a query's Jobs which have not been dispatched
func (s *Scheduler) Pending(id string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	if qs, ok := s.queues[id]; ok {
		return len(qs.pending)
	}
	return 0
}

// InFlight returns the number of a query's Jobs which are executing
func (s *Scheduler) InFlight(id string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	if qs, ok := s.queues[id]; ok {
		return qs.inFlight
	}
	return 0
}

// Failures returns the errors of a query's failed Jobs, or nil
func (s *Scheduler) Failures(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if qs, ok := s.queues[id]; ok {
		return qs.errs.ErrorOrNil()
	}
	return nil
}

// RetryFailed re-enqueues the failed Jobs of a query, returning how many were re-enqueued.
// Partitions which have since been accumulated are skipped.
func (s *Scheduler) RetryFailed(id string) (int, error) {
	if _, err := s.registry.Get(id); err != nil {
		return 0, err
	}
	s.lock.Lock()
	qs, ok := s.queues[id]
	if !ok {
		s.lock.Unlock()
		return 0, nil
	}
	retried := 0
	for _, job := range qs.failed {
		if !qs.q.IsRetired(job.Partition.Index) {
			qs.pending = append(qs.pending, job)
			retried++
		}
	}
	qs.failed = nil
	qs.errs = nil
	s.updateGauges()
	s.lock.Unlock()
	s.conf.Logger.Infof("Retrying %d failed jobs of %s", retried, id)
	s.notify()
	return retried, nil
}

// Run dispatches Jobs until ctx is cancelled, then waits for in-flight Jobs to finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.stats.Start()
	defer s.stats.Finish()
	s.conf.Logger.Infof("Starting scheduler with %d workers", s.conf.NumWorkers)
	for {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.inFlight.Wait()
			return ctx.Err()
		}
		qs, job := s.next()
		if job == nil {
			s.sem.Release(1)
			select {
			case <-ctx.Done():
				s.inFlight.Wait()
				return ctx.Err()
			case <-s.wake:
			}
			continue
		}
		s.inFlight.Add(1)
		go s.execute(ctx, qs, job)
	}
}

// next pops the next Job to dispatch, or returns nil if there is none
func (s *Scheduler) next() (*queueState, *query.Job) {
	s.lock.Lock()
	defer s.lock.Unlock()
	var best *queueState
	for _, qs := range s.queues {
		if len(qs.pending) == 0 || !qs.q.IsRunning() {
			continue
		}
		if best == nil || qs.q.Priority() < best.q.Priority() ||
			(qs.q.Priority() == best.q.Priority() && qs.q.Order() < best.q.Order()) {
			best = qs
		}
	}
	if best == nil {
		return nil, nil
	}
	job := best.pending[0]
	best.pending = best.pending[1:]
	best.inFlight++
	s.updateGauges()
	return best, job
}

func (s *Scheduler) execute(ctx context.Context, qs *queueState, job *query.Job) {
	defer s.inFlight.Done()
	defer s.notify()
	defer s.sem.Release(1)

	q := qs.q
	kind := q.Kind().String()
	start := s.stats.StartPartition()
	partial, err := s.conf.Executor.Execute(ctx, job)
	s.metrics.jobDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err == nil && s.isOpen(qs) {
		err = q.Accumulate(partial)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	qs.inFlight--
	if current, ok := s.queues[q.ID()]; !ok || current != qs {
		s.conf.Logger.Debugf("Discarding job %d of closed %s", job.Index, q.ID())
		return
	}
	var duplicate errors.DuplicatePartialError
	switch {
	case stderrors.As(err, &duplicate):
		s.metrics.jobs.WithLabelValues(kind, outcomeDuplicate).Inc()
		s.conf.Logger.Debugf("Ignoring duplicate partial of partition %d of %s", job.Partition.Index, q.ID())
	case err != nil:
		qs.failed = append(qs.failed, job)
		qs.errs = multierror.Append(qs.errs, err)
		s.metrics.jobs.WithLabelValues(kind, outcomeFailed).Inc()
		s.stats.EndPartition(start, 0, true)
		s.conf.Logger.Warnf("Job %d (partition %d) of %s failed: %v", job.Index, job.Partition.Index, q.ID(), err)
	default:
		s.metrics.jobs.WithLabelValues(kind, outcomeOK).Inc()
		s.metrics.rows.Add(float64(job.Partition.NumRows))
		s.stats.EndPartition(start, job.Partition.NumRows, false)
		if q.Done() {
			s.conf.Logger.Infof("%s %s is done", q.Kind(), q.ID())
		}
	}
	s.updateGauges()
}

// isOpen returns true iff qs still belongs to a registered query
func (s *Scheduler) isOpen(qs *queueState) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	current, ok := s.queues[qs.q.ID()]
	return ok && current == qs
}

// updateGauges refreshes gauge metrics. The caller must hold s.lock.
func (s *Scheduler) updateGauges() {
	active, pending := 0, 0
	for _, qs := range s.queues {
		if len(qs.pending) > 0 || qs.inFlight > 0 {
			active++
		}
		pending += len(qs.pending)
	}
	s.metrics.queries.Set(float64(active))
	s.metrics.pendingJobs.Set(float64(pending))
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
