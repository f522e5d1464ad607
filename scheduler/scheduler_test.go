package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource/memory"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/query"
	"github.com/go-sif/progressive/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func createTestDataset(t *testing.T, numPartitions int) progressive.Dataset {
	s := schema.CreateSchema()
	s.CreateField("cat", &progressive.StringFieldType{})
	s.CreateField("val", &progressive.Float64FieldType{})
	partitions := make([][][]interface{}, numPartitions)
	for i := range partitions {
		partitions[i] = [][]interface{}{{"a", float64(i)}, {"b", float64(i)}, {"a", nil}}
	}
	ds, err := memory.CreateDataSourceFromRows(s, partitions...)
	require.Nil(t, err)
	return ds
}

// recordingExecutor runs Jobs locally, recording the order in which they were executed
type recordingExecutor struct {
	lock     sync.Mutex
	executed []string
	failOnce map[int]bool
}

func (e *recordingExecutor) Execute(ctx context.Context, job *query.Job) (*query.Partial, error) {
	e.lock.Lock()
	e.executed = append(e.executed, job.Query.ID())
	fail := e.failOnce[job.Partition.Index]
	delete(e.failOnce, job.Partition.Index)
	e.lock.Unlock()
	if fail {
		return nil, fmt.Errorf("worker lost partition %d", job.Partition.Index)
	}
	return job.Run(ctx)
}

func (e *recordingExecutor) order() []string {
	e.lock.Lock()
	defer e.lock.Unlock()
	result := make([]string, len(e.executed))
	copy(result, e.executed)
	return result
}

func startScheduler(t *testing.T, s *Scheduler) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()
	return func() {
		cancel()
		require.Equal(t, context.Canceled, <-done)
	}
}

func waitForDone(t *testing.T, q *query.Query) {
	require.Eventually(t, q.Done, 5*time.Second, time.Millisecond)
}

func TestSchedulerCompletesQueries(t *testing.T) {
	defer goleak.VerifyNone(t)
	registry := prometheus.NewRegistry()
	s := New(NewRegistry(createTestDataset(t, 16)), &Conf{NumWorkers: 4, Registerer: registry})
	stop := startScheduler(t, s)
	defer stop()

	freq, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"cat"}`))
	require.Nil(t, err)
	agg, err := s.Submit([]byte(`{"type":"AggregateQuery","grouping":"cat","target":"val","aggregate":"sum"}`))
	require.Nil(t, err)
	waitForDone(t, freq)
	waitForDone(t, agg)

	require.Equal(t, [][]interface{}{
		{"a", uint64(32), 0.0, 0.0, nil, nil, uint64(0)},
		{"b", uint64(16), 0.0, 0.0, nil, nil, uint64(0)},
	}, freq.GetResult())
	a, ok := agg.Lookup(query.Key1(query.KeyPartOf("a")))
	require.True(t, ok)
	require.Equal(t, 120.0, a.Sum)
	require.Equal(t, uint64(16), a.NullCount)

	require.Nil(t, s.Failures(freq.ID()))
	require.Equal(t, 0, s.Pending(freq.ID()))
	require.Eventually(t, func() bool { return s.Stats().GetNumPartitionsProcessed() == 32 }, time.Second, time.Millisecond)
	require.Equal(t, 0, s.InFlight(freq.ID()))
	require.Equal(t, int64(96), s.Stats().GetNumRowsProcessed())
	require.Equal(t, 16.0, testutil.ToFloat64(s.metrics.jobs.WithLabelValues("Frequency1DQuery", outcomeOK)))
	require.Equal(t, 0.0, testutil.ToFloat64(s.metrics.pendingJobs))
}

func TestSchedulerFavoursInteractiveQueries(t *testing.T) {
	defer goleak.VerifyNone(t)
	executor := &recordingExecutor{}
	s := New(NewRegistry(createTestDataset(t, 4)), &Conf{NumWorkers: 1, Executor: executor})

	histogram, err := s.Submit([]byte(`{"type":"Histogram1DQuery","grouping":"val","start":0,"end":4,"numBins":4}`))
	require.Nil(t, err)
	frequency, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"cat"}`))
	require.Nil(t, err)
	selection, err := s.Submit([]byte(`{"type":"SelectQuery","limit":1}`))
	require.Nil(t, err)

	stop := startScheduler(t, s)
	defer stop()
	waitForDone(t, histogram)
	waitForDone(t, frequency)
	waitForDone(t, selection)

	expected := []string{}
	for _, q := range []*query.Query{selection, histogram, frequency} {
		for i := 0; i < 4; i++ {
			expected = append(expected, q.ID())
		}
	}
	require.Equal(t, expected, executor.order())
}

func TestSchedulerPauseGatesDispatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := New(NewRegistry(createTestDataset(t, 5)), &Conf{NumWorkers: 2})
	q, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"cat"}`))
	require.Nil(t, err)
	require.Nil(t, s.Pause(q.ID()))

	stop := startScheduler(t, s)
	defer stop()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 0, q.NumProcessedBlocks())
	require.Equal(t, 5, s.Pending(q.ID()))

	require.Nil(t, s.Resume(q.ID()))
	waitForDone(t, q)
	require.Equal(t, int64(15), q.NumProcessedRows())
}

func TestSchedulerRetriesFailedJobs(t *testing.T) {
	defer goleak.VerifyNone(t)
	executor := &recordingExecutor{failOnce: map[int]bool{1: true, 3: true}}
	s := New(NewRegistry(createTestDataset(t, 5)), &Conf{NumWorkers: 3, Executor: executor})
	stop := startScheduler(t, s)
	defer stop()

	q, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"cat"}`))
	require.Nil(t, err)
	require.Eventually(t, func() bool { return q.NumProcessedBlocks() == 3 && s.Failures(q.ID()) != nil && s.Stats().GetNumPartitionsFailed() == 2 }, 5*time.Second, time.Millisecond)
	require.False(t, q.Done())
	require.Contains(t, s.Failures(q.ID()).Error(), "worker lost partition")

	retried, err := s.RetryFailed(q.ID())
	require.Nil(t, err)
	require.Equal(t, 2, retried)
	waitForDone(t, q)
	require.Nil(t, s.Failures(q.ID()))
	require.Equal(t, [][]interface{}{
		{"a", uint64(10), 0.0, 0.0, nil, nil, uint64(0)},
		{"b", uint64(5), 0.0, 0.0, nil, nil, uint64(0)},
	}, q.GetResult())
}

func TestSchedulerClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := New(NewRegistry(createTestDataset(t, 3)), nil)
	q, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"cat"}`))
	require.Nil(t, err)
	require.Equal(t, 3, s.Pending(q.ID()))
	require.Nil(t, s.Close(q.ID()))
	require.Equal(t, 0, s.Pending(q.ID()))
	_, err = s.Registry().Get(q.ID())
	require.IsType(t, errors.UnknownQueryError{}, err)
	require.IsType(t, errors.UnknownQueryError{}, s.Close(q.ID()))
	require.IsType(t, errors.UnknownQueryError{}, s.Resume(q.ID()))
	_, err = s.RetryFailed(q.ID())
	require.IsType(t, errors.UnknownQueryError{}, err)

	stop := startScheduler(t, s)
	time.Sleep(10 * time.Millisecond)
	stop()
	require.Equal(t, 0, q.NumProcessedBlocks())
}

func TestSchedulerRejectsInvalidSubmissions(t *testing.T) {
	s := New(NewRegistry(createTestDataset(t, 1)), nil)
	_, err := s.Submit([]byte(`{"type":"Frequency1DQuery","grouping":"dog"}`))
	require.IsType(t, errors.UnknownFieldError{}, err)
	require.Len(t, s.Registry().List(), 0)
}
