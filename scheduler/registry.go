package scheduler

import (
	"sort"
	"sync"

	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/query"
)

// Registry holds the active queries against a Dataset
type Registry struct {
	dataset progressive.Dataset
	ids     *query.IDGenerator
	lock    sync.RWMutex
	queries map[string]*query.Query
	qlocks  *locker.Locker // serializes lifecycle operations on each query
}

// NewRegistry creates an empty Registry for queries against dataset
func NewRegistry(dataset progressive.Dataset) *Registry {
	return &Registry{
		dataset: dataset,
		ids:     query.NewIDGenerator(),
		queries: make(map[string]*query.Query),
		qlocks:  locker.New(),
	}
}

// Dataset returns the Dataset queried through this Registry
func (r *Registry) Dataset() progressive.Dataset {
	return r.dataset
}

// Submit constructs a Query from a client submission and registers it
func (r *Registry) Submit(data []byte) (*query.Query, error) {
	q, err := query.FromJSON(data, r.dataset, r.ids)
	if err != nil {
		return nil, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.queries[q.ID()] = q
	return q, nil
}

// Get returns a registered Query
func (r *Registry) Get(id string) (*query.Query, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	q, ok := r.queries[id]
	if !ok {
		return nil, errors.UnknownQueryError{ID: id}
	}
	return q, nil
}

// List returns all registered queries, in submission order
func (r *Registry) List() []*query.Query {
	r.lock.RLock()
	result := make([]*query.Query, 0, len(r.queries))
	for _, q := range r.queries {
		result = append(result, q)
	}
	r.lock.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Order() < result[j].Order() })
	return result
}

// Pause stops the dispatch of new Jobs for a Query
func (r *Registry) Pause(id string) error {
	return r.withQuery(id, func(q *query.Query) error {
		q.Pause()
		return nil
	})
}

// Resume restarts the dispatch of Jobs for a Query
func (r *Registry) Resume(id string) error {
	return r.withQuery(id, func(q *query.Query) error {
		q.Resume()
		return nil
	})
}

// Close unregisters a Query, discarding its result
func (r *Registry) Close(id string) error {
	return r.withQuery(id, func(q *query.Query) error {
		r.lock.Lock()
		defer r.lock.Unlock()
		delete(r.queries, id)
		return nil
	})
}

// withQuery runs fn on a registered Query while holding its lifecycle lock
func (r *Registry) withQuery(id string, fn func(q *query.Query) error) error {
	r.qlocks.Lock(id)
	defer r.qlocks.Unlock(id)
	q, err := r.Get(id)
	if err != nil {
		return err
	}
	return fn(q)
}
