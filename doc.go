// Package progressive contains the core interfaces of a progressive query engine, which answers
// aggregate queries over a horizontally-partitioned dataset one partition at a time, so that
// clients can observe an approximate answer which improves as more partitions are processed.
// This root package defines the types shared between the query model, datasets and executors,
// and is a good overview of the framework's key concepts.
package progressive
