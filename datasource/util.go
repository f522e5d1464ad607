// Package datasource provides helpers for the implementation of Datasets and DataSourceParsers.
package datasource

import (
	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/internal/partition"
)

// CreateBuildablePartition produces a fresh, empty Partition (useful for the implementation of Datasets and parsers)
func CreateBuildablePartition(initialCapacity int, schema progressive.Schema) progressive.BuildablePartition {
	return partition.CreatePartition(initialCapacity, schema)
}

