package cluster

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/query"
	uuid "github.com/gofrs/uuid"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Worker executes Jobs on behalf of a remote scheduler
type Worker struct {
	id         string
	opts       *WorkerOptions
	dataset    progressive.Dataset
	partitions map[int]progressive.PartitionInfo
	queries    *lru.Cache
	server     *grpc.Server
}

// CreateWorker is a factory for Workers
func CreateWorker(dataset progressive.Dataset, opts *WorkerOptions) (*Worker, error) {
	if dataset == nil {
		return nil, fmt.Errorf("Dataset cannot be nil")
	}
	if opts == nil {
		opts = &WorkerOptions{}
	}
	ensureDefaultWorkerOptionsValues(opts)
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %v", err)
	}
	queries, err := lru.New(opts.QueryCacheSize)
	if err != nil {
		return nil, err
	}
	partitions := make(map[int]progressive.PartitionInfo)
	for _, p := range dataset.ListPartitions() {
		partitions[p.Index] = p
	}
	w := &Worker{
		id:         id.String(),
		opts:       opts,
		dataset:    dataset,
		partitions: partitions,
		queries:    queries,
		server:     grpc.NewServer(),
	}
	registerJobServer(w.server, w)
	return w, nil
}

// ID returns the ID of this Worker
func (w *Worker) ID() string {
	return w.id
}

// Start the Worker on its configured host and port - will block the current thread
func (w *Worker) Start() error {
	lis, err := net.Listen("tcp", w.opts.connectionString())
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	return w.Serve(lis)
}

// Serve Jobs on lis until the Worker is stopped - will block the current thread
func (w *Worker) Serve(lis net.Listener) error {
	w.opts.Logger.Infof("Worker %s serving %d partitions on %s", w.id, len(w.partitions), lis.Addr())
	err := w.server.Serve(lis)
	if err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// GracefulStop the Worker, waiting for running Jobs to finish
func (w *Worker) GracefulStop() error {
	w.server.GracefulStop()
	return nil
}

// Stop the Worker immediately
func (w *Worker) Stop() error {
	w.server.Stop()
	return nil
}

// RunJob executes a single Job, responding with its serialized Partial
func (w *Worker) RunJob(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	var jreq jobRequest
	if err := json.Unmarshal(req.Value, &jreq); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed job request: %v", err)
	}
	info, ok := w.partitions[jreq.Partition]
	if !ok || info.Path != jreq.Path {
		return nil, status.Error(codes.NotFound, errors.UnknownPartitionError{QueryID: jreq.QueryID, Partition: jreq.Partition}.Error())
	}
	q, err := w.rebuild(jreq.QueryID, jreq.Submission)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "unable to rebuild %s: %v", jreq.QueryID, err)
	}
	job := &query.Job{Index: jreq.Index, Partition: info, Query: q}
	partial, err := job.Run(ctx)
	if err != nil {
		w.opts.Logger.Warnf("Job %d (partition %d) of %s failed: %v", jreq.Index, jreq.Partition, jreq.QueryID, err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	data, err := partial.ToBytes()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	w.opts.Logger.Debugf("Job %d (partition %d) of %s matched %d rows", jreq.Index, jreq.Partition, jreq.QueryID, partial.NumMatched)
	return &wrapperspb.BytesValue{Value: data}, nil
}

// rebuild returns the Query with the given id, reusing a previous reconstruction of the same submission
func (w *Worker) rebuild(id string, submission []byte) (*query.Query, error) {
	key := id + ":" + strconv.FormatUint(xxhash.Sum64(submission), 16)
	if cached, ok := w.queries.Get(key); ok {
		return cached.(*query.Query), nil
	}
	q, err := query.Rebuild(id, submission, w.dataset)
	if err != nil {
		return nil, err
	}
	w.queries.Add(key, q)
	return q, nil
}
