// Package query implements progressive queries: a Query is decomposed into one Job per
// partition of a Dataset, and the Partial each Job produces is merged into the Query's
// running result as it arrives, in any order.
package query

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/accumulators"
	"github.com/go-sif/progressive/errors"
)

// DefaultSelectLimit is the page size of a SelectQuery which does not specify one
const DefaultSelectLimit = 100

// State is the dispatch state of a Query
type State int

const (
	// Running queries have their Jobs dispatched
	Running State = iota
	// Paused queries have no new Jobs dispatched; Jobs already in flight still accumulate
	Paused
)

// String returns a textual representation of this State
func (s State) String() string {
	if s == Paused {
		return "Paused"
	}
	return "Running"
}

// PageListener is notified with each page of rows produced for a SelectQuery
type PageListener func(queryID string, page [][]interface{})

// Options are the parameters shared by all query kinds
type Options struct {
	Where     progressive.Predicate // Where filters rows before aggregation; nil matches all rows
	WhereDesc string                // WhereDesc is the filter description Where was compiled from, echoed in snapshots
	Shuffle   bool                  // Shuffle randomizes the order of Jobs
	Seed      *int64                // Seed fixes the shuffled order of Jobs, if non-nil
}

// Query is the state machine for a single progressive query
type Query struct {
	id            string
	order         int64
	params        Params
	dataset       progressive.Dataset
	partitions    []progressive.PartitionInfo
	partitionRows map[int]int64
	options       Options
	submission    []byte

	lock               sync.Mutex
	state              State
	result             map[GroupKey]accumulators.AggregateValue
	page               [][]interface{}
	pageListeners      []PageListener
	retired            map[int]struct{}
	numProcessedRows   int64
	numProcessedBlocks int
	numExcludedRows    uint64
	lastUpdated        time.Time
}

// New creates a Running Query over all partitions currently listed by dataset
func New(id string, order int64, dataset progressive.Dataset, params Params, options Options) (*Query, error) {
	if dataset == nil {
		return nil, errors.InvalidQueryError{Reason: "no dataset"}
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	partitions := dataset.ListPartitions()
	partitionRows := make(map[int]int64, len(partitions))
	for _, p := range partitions {
		partitionRows[p.Index] = p.NumRows
	}
	return &Query{
		id:            id,
		order:         order,
		params:        params,
		dataset:       dataset,
		partitions:    partitions,
		partitionRows: partitionRows,
		options:       options,
		state:         Running,
		result:        make(map[GroupKey]accumulators.AggregateValue),
		retired:       make(map[int]struct{}, len(partitions)),
	}, nil
}

func validateParams(params Params) error {
	missing := func(name string) error {
		return errors.InvalidQueryError{Reason: fmt.Sprintf("missing %s", name)}
	}
	switch p := params.(type) {
	case *SelectParams:
		if p.Limit <= 0 {
			return errors.InvalidQueryError{Reason: fmt.Sprintf("limit must be positive, was %d", p.Limit)}
		}
	case *AggregateParams:
		if p.Grouping == nil {
			return missing("grouping")
		} else if p.Target == nil {
			return missing("target")
		} else if !progressive.IsNumeric(p.Target.Type()) {
			return errors.InvalidQueryError{Reason: fmt.Sprintf("target %s is not numeric", p.Target.Name())}
		}
	case *Frequency1DParams:
		if p.Grouping == nil {
			return missing("grouping")
		}
	case *Frequency2DParams:
		if p.Grouping1 == nil {
			return missing("grouping1")
		} else if p.Grouping2 == nil {
			return missing("grouping2")
		}
	case *Histogram1DParams:
		if p.Grouping == nil {
			return missing("grouping")
		} else if !progressive.IsNumeric(p.Grouping.Type()) {
			return errors.InvalidQueryError{Reason: fmt.Sprintf("grouping %s is not numeric", p.Grouping.Name())}
		}
	case *Histogram2DParams:
		if p.Grouping1 == nil {
			return missing("grouping1")
		} else if p.Grouping2 == nil {
			return missing("grouping2")
		} else if !progressive.IsNumeric(p.Grouping1.Type()) || !progressive.IsNumeric(p.Grouping2.Type()) {
			return errors.InvalidQueryError{Reason: "histogram groupings must be numeric"}
		}
	default:
		return errors.InvalidQueryError{Reason: "missing query parameters"}
	}
	return nil
}

// ID returns the id of this Query
func (q *Query) ID() string {
	return q.id
}

// Order returns the submission sequence number of this Query
func (q *Query) Order() int64 {
	return q.order
}

// Kind returns the Kind of this Query
func (q *Query) Kind() Kind {
	return q.params.Kind()
}

// Params returns the variant-specific parameters of this Query
func (q *Query) Params() Params {
	return q.params
}

// Priority returns the scheduling priority of this Query. Lower values are scheduled first.
func (q *Query) Priority() int {
	return q.Kind().Priority()
}

// Where returns the Predicate of this Query, or nil if it matches all rows
func (q *Query) Where() progressive.Predicate {
	return q.options.Where
}

// Dataset returns the Dataset this Query runs against
func (q *Query) Dataset() progressive.Dataset {
	return q.dataset
}

// Submission returns the client submission this Query was constructed from, or nil
func (q *Query) Submission() []byte {
	return q.submission
}

// NumBlocks returns the number of partitions this Query covers
func (q *Query) NumBlocks() int {
	return len(q.partitions)
}

// GetJobs produces one Job per partition, in a random order if the Query shuffles
func (q *Query) GetJobs() []*Job {
	jobs := make([]*Job, len(q.partitions))
	for i, p := range q.partitions {
		jobs[i] = &Job{Index: i, Partition: p, Query: q}
	}
	if q.options.Shuffle {
		seed := time.Now().UnixNano()
		if q.options.Seed != nil {
			seed = *q.options.Seed
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(jobs), func(i, j int) {
			jobs[i], jobs[j] = jobs[j], jobs[i]
		})
	}
	return jobs
}

// Pause stops the dispatch of new Jobs for this Query
func (q *Query) Pause() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.state = Paused
}

// Resume restarts the dispatch of Jobs for this Query
func (q *Query) Resume() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.state = Running
}

// State returns the current State of this Query
func (q *Query) State() State {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.state
}

// IsRunning returns true iff this Query is Running
func (q *Query) IsRunning() bool {
	return q.State() == Running
}

// Done returns true once every partition has been accumulated
func (q *Query) Done() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.numProcessedBlocks == len(q.partitions)
}

// IsRetired returns true iff the Partial for the given partition has been accumulated
func (q *Query) IsRetired(partition int) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	_, ok := q.retired[partition]
	return ok
}

// NumProcessedBlocks returns the number of partitions accumulated so far
func (q *Query) NumProcessedBlocks() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.numProcessedBlocks
}

// NumProcessedRows returns the total row count of the partitions accumulated so far
func (q *Query) NumProcessedRows() int64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.numProcessedRows
}

// NumExcludedRows returns the number of matching rows a histogram query could not place in any bin
func (q *Query) NumExcludedRows() uint64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.numExcludedRows
}

// LastUpdated returns the time of the most recent accumulation, or the zero Time
func (q *Query) LastUpdated() time.Time {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.lastUpdated
}

// OnPage registers a listener for the pages of rows produced by a SelectQuery
func (q *Query) OnPage(listener PageListener) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.pageListeners = append(q.pageListeners, listener)
}

// Accumulate merges the Partial produced by one of this Query's Jobs into its result.
// Each partition is accumulated at most once: a second Partial for the same partition
// is rejected with an errors.DuplicatePartialError and changes nothing.
func (q *Query) Accumulate(partial *Partial) error {
	if partial == nil {
		return errors.VariantMismatchError{QueryID: q.id, Expected: q.Kind().String(), Actual: "nil"}
	}
	if partial.QueryID != q.id {
		return errors.VariantMismatchError{QueryID: q.id, Expected: q.Kind().String(), Actual: fmt.Sprintf("%s from query %s", partial.Kind, partial.QueryID)}
	}
	if partial.Kind != q.Kind() {
		return errors.VariantMismatchError{QueryID: q.id, Expected: q.Kind().String(), Actual: partial.Kind.String()}
	}
	numRows, ok := q.partitionRows[partial.Partition]
	if !ok {
		return errors.UnknownPartitionError{QueryID: q.id, Partition: partial.Partition}
	}

	q.lock.Lock()
	if _, ok := q.retired[partial.Partition]; ok {
		q.lock.Unlock()
		return errors.DuplicatePartialError{QueryID: q.id, Partition: partial.Partition}
	}
	q.retired[partial.Partition] = struct{}{}
	for key, value := range partial.Groups {
		if existing, ok := q.result[key]; ok {
			q.result[key] = accumulators.Merge(existing, value)
		} else {
			q.result[key] = value
		}
	}
	q.numExcludedRows += partial.Excluded
	q.numProcessedBlocks++
	q.numProcessedRows += numRows
	q.lastUpdated = time.Now()
	var listeners []PageListener
	if q.Kind() == SelectKind {
		q.page = partial.Rows
		listeners = append(listeners, q.pageListeners...)
	}
	q.lock.Unlock()

	for _, listener := range listeners {
		listener(q.id, partial.Rows)
	}
	return nil
}

// GetResult returns the current, possibly incomplete, result of this Query as a list of rows.
// Grouped queries produce one row per group, sorted by group key:
//
//	key parts..., count, sum, sumSquares, min, max, nullCount
//
// followed by the operator's value for an AggregateQuery. Null key parts are nil, as are min
// and max unless the group of an AggregateQuery has values. A SelectQuery returns its most recent page of rows.
func (q *Query) GetResult() [][]interface{} {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.getResultLocked()
}

// getResultLocked builds the rows of GetResult. The caller must hold q.lock.
func (q *Query) getResultLocked() [][]interface{} {
	if q.Kind() == SelectKind {
		page := make([][]interface{}, len(q.page))
		copy(page, q.page)
		return page
	}
	keys := make([]GroupKey, 0, len(q.result))
	for key := range q.result {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var operator accumulators.Operator
	if p, ok := q.params.(*AggregateParams); ok {
		operator = p.Operator
	}
	rows := make([][]interface{}, 0, len(keys))
	for _, key := range keys {
		value := q.result[key]
		row := key.Values()
		var min, max interface{}
		if operator != "" && value.Count > 0 {
			min, max = value.Min, value.Max
		}
		row = append(row, value.Count, value.Sum, value.SumSquares, min, max, value.NullCount)
		if operator != "" {
			row = append(row, finiteOrNil(operator.Evaluate(value)))
		}
		rows = append(rows, row)
	}
	return rows
}

// Lookup returns the accumulated value of a single group
func (q *Query) Lookup(key GroupKey) (accumulators.AggregateValue, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	value, ok := q.result[key]
	return value, ok
}
