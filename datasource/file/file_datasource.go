package file

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource/parser/dsv"
	"github.com/go-sif/progressive/datasource/parser/jsonl"
	"github.com/go-sif/progressive/logging"
	lru "github.com/hashicorp/golang-lru"
)

// MetadataFileName is the name of the file describing a partitioned dataset directory
const MetadataFileName = "metadata.json"

// DefaultCacheSize is the number of loaded partitions retained by a DataSource
const DefaultCacheSize = 64

// Conf configures a file DataSource
type Conf struct {
	Parser    progressive.DataSourceParser // Parser parses every partition file. Defaults to JSON lines for .jsonl and .ndjson files, and headerless CSV otherwise.
	CacheSize int                          // CacheSize is the number of loaded partitions to retain. Defaults to DefaultCacheSize; negative disables caching.
	Logger    *logging.Logger
}

// DataSource is a Dataset stored as a directory of partition files
type DataSource struct {
	dir        string
	schema     progressive.Schema
	parser     progressive.DataSourceParser
	csv        progressive.DataSourceParser
	jsonl      progressive.DataSourceParser
	partitions []progressive.PartitionInfo
	numRows    int64
	cache      *lru.Cache
	plocks     *locker.Locker
	logger     *logging.Logger
}

// Open loads the metadata.json of a dataset directory, producing a DataSource
func Open(dir string, conf *Conf) (*DataSource, error) {
	if conf == nil {
		conf = &Conf{}
	}
	data, err := ioutil.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		return nil, fmt.Errorf("unable to read dataset metadata: %w", err)
	}
	meta, err := ParseMetadata(data)
	if err != nil {
		return nil, err
	}
	ds := &DataSource{
		dir:        dir,
		schema:     meta.Schema,
		parser:     conf.Parser,
		partitions: meta.Partitions,
		numRows:    meta.NumRows,
		plocks:     locker.New(),
		logger:     conf.Logger,
	}
	if ds.logger == nil {
		ds.logger = logging.Nop()
	}
	if ds.parser == nil {
		ds.csv = dsv.CreateParser(&dsv.ParserConf{})
		ds.jsonl = jsonl.CreateParser(&jsonl.ParserConf{Logger: ds.logger})
	}
	cacheSize := conf.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheSize > 0 {
		ds.cache, err = lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
	}
	ds.logger.Infof("Opened dataset %s with %d partitions and %d rows", dir, len(ds.partitions), ds.numRows)
	return ds, nil
}

// ListPartitions returns all partitions, ordered by Index
func (ds *DataSource) ListPartitions() []progressive.PartitionInfo {
	result := make([]progressive.PartitionInfo, len(ds.partitions))
	copy(result, ds.partitions)
	return result
}

// Schema returns the Schema of this DataSource
func (ds *DataSource) Schema() progressive.Schema {
	return ds.schema
}

// FieldByName looks up a Field of this DataSource
func (ds *DataSource) FieldByName(name string) (progressive.Field, error) {
	return ds.schema.FieldByName(name)
}

// NumRows returns the total number of rows across all partitions
func (ds *DataSource) NumRows() int64 {
	return ds.numRows
}

// Purge drops all cached partitions
func (ds *DataSource) Purge() {
	if ds.cache != nil {
		ds.cache.Purge()
	}
}
