package progressive

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about a running scheduler
type RuntimeStatistics interface {
	// GetStartTime returns the start time of the scheduler
	GetStartTime() time.Time
	// GetRuntime returns the running time of the scheduler
	GetRuntime() time.Duration
	// GetNumRowsProcessed returns the number of Rows which have been processed so far
	GetNumRowsProcessed() int64
	// GetNumPartitionsProcessed returns the number of partitions which have been processed so far
	GetNumPartitionsProcessed() int64
	// GetNumPartitionsFailed returns the number of partition jobs which have failed so far
	GetNumPartitionsFailed() int64
	// GetCurrentPartitionProcessingTime returns a rolling average of partition processing time
	GetCurrentPartitionProcessingTime() time.Duration
}
