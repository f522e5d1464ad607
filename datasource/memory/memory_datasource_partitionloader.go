package memory

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-sif/progressive"
)

// ReadPartition loads the rows of a partition which pass pred
func (ds *DataSource) ReadPartition(ctx context.Context, info progressive.PartitionInfo, pred progressive.Predicate) (progressive.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if info.Index < 0 || info.Index >= len(ds.partitions) {
		return nil, fmt.Errorf("memory partition index %d out of range", info.Index)
	}
	var part progressive.BuildablePartition
	if ds.built != nil {
		part = ds.built[info.Index]
	} else {
		parsed, err := ds.parse(info.Index)
		if err != nil {
			return nil, err
		}
		part = parsed
	}
	return part.FilterRows(pred), nil
}

func (ds *DataSource) parse(idx int) (progressive.BuildablePartition, error) {
	part, err := ds.parser.Parse(bytes.NewReader(ds.data[idx]), ds.schema)
	if err != nil {
		return nil, fmt.Errorf("unable to parse memory partition %d: %w", idx, err)
	}
	return part, nil
}
