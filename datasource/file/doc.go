// Package file provides a Dataset which reads data from a directory of partition files on disk,
// described by a metadata.json file. Each partition file is read by a single Job, so it is
// favourable if individual files represent roughly equal-sized divisions of data.
// Partition files may be zstd (.zst) or lz4 (.lz4) compressed, and hold either headerless CSV
// or, for .jsonl and .ndjson files, JSON lines.
package file
