package query

import (
	"context"
	"fmt"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/accumulators"
)

// Job computes the Partial of one Query over one partition
type Job struct {
	Index     int                       // Index is the position of this Job within its Query's run
	Partition progressive.PartitionInfo // Partition is the partition this Job reads
	Query     *Query                    // Query is the owning Query, which supplies the predicate and parameters
}

// Run reads the Job's partition and computes its Partial. Run writes no shared state,
// so the resulting Partial must still be handed to Query.Accumulate.
func (j *Job) Run(ctx context.Context) (*Partial, error) {
	q := j.Query
	part, err := q.dataset.ReadPartition(ctx, j.Partition, q.options.Where)
	if err != nil {
		return nil, fmt.Errorf("unable to read partition %d of query %s: %w", j.Partition.Index, q.id, err)
	}
	partial := &Partial{
		QueryID:    q.id,
		Kind:       q.Kind(),
		Partition:  j.Partition.Index,
		NumMatched: int64(part.GetNumRows()),
	}
	switch p := q.params.(type) {
	case *SelectParams:
		err = runSelect(p, part, partial)
	case *AggregateParams:
		err = runAggregate(p, part, partial)
	case *Frequency1DParams:
		err = runFrequency(part, partial, func(row progressive.Row) GroupKey {
			return Key1(KeyPartOf(row.Get(p.Grouping.Index())))
		})
	case *Frequency2DParams:
		err = runFrequency(part, partial, func(row progressive.Row) GroupKey {
			return Key2(KeyPartOf(row.Get(p.Grouping1.Index())), KeyPartOf(row.Get(p.Grouping2.Index())))
		})
	case *Histogram1DParams:
		err = runHistogram1D(p, part, partial)
	case *Histogram2DParams:
		err = runHistogram2D(p, part, partial)
	}
	if err != nil {
		return nil, err
	}
	return partial, nil
}

func runSelect(p *SelectParams, part progressive.Partition, partial *Partial) error {
	limit := p.Limit
	if part.GetNumRows() < limit {
		limit = part.GetNumRows()
	}
	partial.Rows = make([][]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		row := part.GetRow(i)
		if len(p.Fields) == 0 {
			partial.Rows = append(partial.Rows, row.Values())
			continue
		}
		projected := make([]interface{}, len(p.Fields))
		for j, f := range p.Fields {
			projected[j] = row.Get(f.Index())
		}
		partial.Rows = append(partial.Rows, projected)
	}
	return nil
}

func runAggregate(p *AggregateParams, part progressive.Partition, partial *Partial) error {
	groups := make(map[GroupKey]accumulators.AggregateValue)
	groupIdx, targetIdx := p.Grouping.Index(), p.Target.Index()
	err := part.ForEachRow(func(row progressive.Row) error {
		key := Key1(KeyPartOf(row.Get(groupIdx)))
		value := groups[key]
		if v, ok := row.GetFloat64(targetIdx); ok {
			value.Observe(v)
		} else {
			value.ObserveNull()
		}
		groups[key] = value
		return nil
	})
	partial.Groups = groups
	return err
}

func runFrequency(part progressive.Partition, partial *Partial, keyOf func(row progressive.Row) GroupKey) error {
	counts := make(map[GroupKey]uint64)
	err := part.ForEachRow(func(row progressive.Row) error {
		counts[keyOf(row)]++
		return nil
	})
	partial.Groups = countsToGroups(counts)
	return err
}

func runHistogram1D(p *Histogram1DParams, part progressive.Partition, partial *Partial) error {
	counts := make(map[GroupKey]uint64)
	idx := p.Grouping.Index()
	err := part.ForEachRow(func(row progressive.Row) error {
		v, ok := row.GetFloat64(idx)
		if !ok {
			partial.Excluded++
			return nil
		}
		bin, ok := p.Bins.Bin(v)
		if !ok {
			partial.Excluded++
			return nil
		}
		counts[Key1(KeyPartOf(int64(bin)))]++
		return nil
	})
	partial.Groups = countsToGroups(counts)
	return err
}

func runHistogram2D(p *Histogram2DParams, part progressive.Partition, partial *Partial) error {
	counts := make(map[GroupKey]uint64)
	idx1, idx2 := p.Grouping1.Index(), p.Grouping2.Index()
	err := part.ForEachRow(func(row progressive.Row) error {
		v1, ok1 := row.GetFloat64(idx1)
		v2, ok2 := row.GetFloat64(idx2)
		if !ok1 || !ok2 {
			partial.Excluded++
			return nil
		}
		bin1, ok1 := p.Bins1.Bin(v1)
		bin2, ok2 := p.Bins2.Bin(v2)
		if !ok1 || !ok2 {
			partial.Excluded++
			return nil
		}
		counts[Key2(KeyPartOf(int64(bin1)), KeyPartOf(int64(bin2)))]++
		return nil
	})
	partial.Groups = countsToGroups(counts)
	return err
}

func countsToGroups(counts map[GroupKey]uint64) map[GroupKey]accumulators.AggregateValue {
	groups := make(map[GroupKey]accumulators.AggregateValue, len(counts))
	for key, n := range counts {
		groups[key] = accumulators.Counted(n)
	}
	return groups
}
