package progressive

// PartitionInfo describes a contiguous, independently readable
// slice of a Dataset. PartitionInfos are immutable once listed.
type PartitionInfo struct {
	Index   int    // Index is the ordinal of this partition within its Dataset
	Path    string // Path locates the partition within its storage
	NumRows int64  // NumRows is the total number of rows stored in the partition
}

// A Partition is a block of Rows loaded from a single partition of a Dataset.
type Partition interface {
	ID() string                       // ID retrieves the ID of this Partition
	GetNumRows() int                  // GetNumRows retrieves the number of rows in this Partition
	GetRow(rowNum int) Row            // GetRow retrieves a specific row from this Partition
	ForEachRow(fn RowOperation) error // ForEachRow iterates over Rows in a Partition
}

// A BuildablePartition can be built. Used in the implementation of Datasets and Parsers
type BuildablePartition interface {
	Partition
	AppendRowData(values []interface{}) error     // AppendRowData adds a Row to the end of this Partition, if it fits the schema
	FilterRows(pred Predicate) BuildablePartition // FilterRows produces a new Partition containing only the Rows which pass pred
}
