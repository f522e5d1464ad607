package progressive

import (
	"context"
	"io"
)

// Dataset is a source of partitioned data against which queries are run.
// Datasets are consumed by queries to resolve Fields and list partitions,
// and by Jobs to read the Rows of a single partition.
type Dataset interface {
	ListPartitions() []PartitionInfo                                                          // ListPartitions returns all partitions, ordered by Index
	Schema() Schema                                                                           // Schema returns the ordered Fields of this Dataset
	FieldByName(name string) (Field, error)                                                   // FieldByName looks up a Field, returning an errors.UnknownFieldError if it is absent
	ReadPartition(ctx context.Context, info PartitionInfo, pred Predicate) (Partition, error) // ReadPartition loads the Rows of a partition which pass pred (all Rows if pred is nil)
}

// DataSourceParser is a parser which turns the raw contents of a partition into a Partition.
type DataSourceParser interface {
	Parse(r io.Reader, schema Schema) (BuildablePartition, error)
}
