// Package split partitions CSV inputs into a dataset directory readable by datasource/file.
//
// Rows are either cut into consecutive batches of a fixed size, or scattered uniformly at
// random across a fixed number of batches. Each batch is written as a headerless CSV file,
// optionally zstd-compressed, and described by a metadata.json file alongside the batches.
package split
