package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/progressive"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// ReadPartition loads the rows of a partition which pass pred. Parsed partitions, and
// their filtered forms, are cached by path and predicate.
func (ds *DataSource) ReadPartition(ctx context.Context, info progressive.PartitionInfo, pred progressive.Predicate) (progressive.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := ds.cached(cacheKey(info.Path, nil), func() (progressive.BuildablePartition, error) {
		return ds.load(info)
	})
	if err != nil || pred == nil {
		return raw, err
	}
	return ds.cached(cacheKey(info.Path, pred), func() (progressive.BuildablePartition, error) {
		return raw.FilterRows(pred), nil
	})
}

// cacheKey fingerprints a partition path and predicate
func cacheKey(path string, pred progressive.Predicate) string {
	desc := ""
	if pred != nil {
		desc = pred.String()
	}
	return strconv.FormatUint(xxhash.Sum64String(path+"\x00"+desc), 16)
}

func (ds *DataSource) cached(key string, produce func() (progressive.BuildablePartition, error)) (progressive.BuildablePartition, error) {
	if ds.cache == nil {
		return produce()
	}
	if part, ok := ds.cache.Get(key); ok {
		return part.(progressive.BuildablePartition), nil
	}
	// one producer per key; later callers wait and then hit the cache
	ds.plocks.Lock(key)
	defer ds.plocks.Unlock(key)
	if part, ok := ds.cache.Get(key); ok {
		return part.(progressive.BuildablePartition), nil
	}
	part, err := produce()
	if err != nil {
		return nil, err
	}
	ds.cache.Add(key, part)
	return part, nil
}

// parserFor picks the parser of a partition file from its extension, unless one was configured
func (ds *DataSource) parserFor(stripped string, ext string) progressive.DataSourceParser {
	if ds.parser != nil {
		return ds.parser
	}
	switch ext {
	case ".zst", ".zstd", ".lz4":
		ext = strings.ToLower(filepath.Ext(stripped))
	}
	if ext == ".jsonl" || ext == ".ndjson" {
		return ds.jsonl
	}
	return ds.csv
}

func (ds *DataSource) load(info progressive.PartitionInfo) (progressive.BuildablePartition, error) {
	path := info.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(ds.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			ds.logger.Warnf("couldn't close file %s: %v", path, err)
		}
	}()
	var r io.Reader = f
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zst", ".zstd":
		decoder, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		r = decoder
	case ".lz4":
		r = lz4.NewReader(f)
	}
	part, err := ds.parserFor(strings.TrimSuffix(path, filepath.Ext(path)), ext).Parse(r, ds.schema)
	if err != nil {
		return nil, fmt.Errorf("unable to parse partition %d (%s): %w", info.Index, info.Path, err)
	}
	if int64(part.GetNumRows()) != info.NumRows {
		ds.logger.Warnf("partition %d (%s) has %d rows, metadata lists %d", info.Index, info.Path, part.GetNumRows(), info.NumRows)
	}
	ds.logger.Debugf("Loaded partition %d (%s)", info.Index, info.Path)
	return part, nil
}
