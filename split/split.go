package split

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sif/progressive/logging"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// MetadataFileName is the name of the file describing the output directory
const MetadataFileName = "metadata.json"

// Options configures a split
type Options struct {
	Inputs      []string        // [REQUIRED] input CSV files or glob patterns. The first line of each is its header.
	OutputDir   string          // [REQUIRED] directory to write batches and metadata into. Created if absent.
	NumRows     int             // NumRows cuts the input into consecutive batches of this many rows
	NumBatches  int             // NumBatches scatters the input at random across this many batches. Exactly one of NumRows and NumBatches must be set.
	Fields      []string        // Fields projects the input onto these columns. Defaults to the header of the first input.
	Shuffle     bool            // Shuffle randomizes the order of rows within each batch. Always true when NumBatches is set.
	Compress    bool            // Compress writes batches as .csv.zst
	InferTypes  bool            // InferTypes annotates the header of the metadata with the narrowest type holding every value of a column
	Seed        *int64          // Seed fixes the random assignment and shuffling of rows, if non-nil
	Parallelism int             // Parallelism bounds the number of batches written concurrently. Defaults to 4.
	Logger      *logging.Logger // Logger receives progress messages
}

// OutputFile describes a single written batch
type OutputFile struct {
	Index   int    `json:"index"`
	Path    string `json:"path"`
	NumRows int64  `json:"num_rows"`
}

// HeaderEntry describes a single column of the output
type HeaderEntry struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Metadata is the content of the metadata.json file of a split dataset
type Metadata struct {
	InputFiles  []string      `json:"input_files"`
	OutputFiles []OutputFile  `json:"output_files"`
	Header      []HeaderEntry `json:"header"`
}

func ensureDefaultOptionsValues(opts *Options) error {
	if len(opts.Inputs) == 0 {
		return fmt.Errorf("Options.Inputs must name at least one input")
	}
	if len(opts.OutputDir) == 0 {
		return fmt.Errorf("Options.OutputDir must be set")
	}
	if (opts.NumRows > 0) == (opts.NumBatches > 0) {
		return fmt.Errorf("exactly one of Options.NumRows and Options.NumBatches must be positive")
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return nil
}

// Split partitions the inputs described by opts, writing batches and a metadata.json into opts.OutputDir
func Split(ctx context.Context, opts *Options) (*Metadata, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := ensureDefaultOptionsValues(opts); err != nil {
		return nil, err
	}
	inputs, err := expandInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, err
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	s := &splitter{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
		meta: &Metadata{InputFiles: inputs},
		sem:  semaphore.NewWeighted(int64(opts.Parallelism)),
	}
	group, gctx := errgroup.WithContext(ctx)
	s.group, s.ctx = group, gctx
	if err := s.run(inputs); err != nil {
		group.Wait()
		return nil, err
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for i, field := range s.fields {
		entry := HeaderEntry{Name: field}
		if opts.InferTypes {
			entry.Type = s.columns[i].typeName()
		}
		s.meta.Header = append(s.meta.Header, entry)
	}
	if err := writeMetadata(opts.OutputDir, s.meta); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Split %d inputs into %d batches in %s", len(inputs), len(s.meta.OutputFiles), opts.OutputDir)
	return s.meta, nil
}

func expandInputs(patterns []string) ([]string, error) {
	inputs := []string{}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input %s matches no files", pattern)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

// splitter carries the state of a single split
type splitter struct {
	opts    *Options
	rng     *rand.Rand
	meta    *Metadata
	fields  []string
	columns []columnType
	sem     *semaphore.Weighted
	group   *errgroup.Group
	ctx     context.Context
}

func (s *splitter) run(inputs []string) error {
	if s.opts.NumRows > 0 {
		buffer := [][]string{}
		for _, input := range inputs {
			err := s.readInput(input, func(row []string) error {
				buffer = append(buffer, row)
				if len(buffer) == s.opts.NumRows {
					if err := s.emit(buffer, s.opts.Shuffle); err != nil {
						return err
					}
					buffer = [][]string{}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		if len(buffer) > 0 {
			return s.emit(buffer, s.opts.Shuffle)
		}
		return nil
	}
	batches := make([][][]string, s.opts.NumBatches)
	for _, input := range inputs {
		err := s.readInput(input, func(row []string) error {
			b := s.rng.Intn(len(batches))
			batches[b] = append(batches[b], row)
			return nil
		})
		if err != nil {
			return err
		}
	}
	for _, batch := range batches {
		if err := s.emit(batch, true); err != nil {
			return err
		}
	}
	return nil
}

// readInput streams the projected rows of a single input to fn
func (s *splitter) readInput(path string, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("input %s has no header", path)
	} else if err != nil {
		return fmt.Errorf("input %s: %w", path, err)
	}
	projection, err := s.project(path, header)
	if err != nil {
		return err
	}
	s.opts.Logger.Debugf("Reading %s", path)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("input %s: %w", path, err)
		}
		row := make([]string, len(projection))
		for i, col := range projection {
			if col < len(record) {
				row[i] = record[col]
			}
			s.columns[i].observe(row[i])
		}
		if err := fn(row); err != nil {
			return err
		}
		if err := s.ctx.Err(); err != nil {
			return err
		}
	}
}

// project maps the output fields onto the columns of an input's header
func (s *splitter) project(path string, header []string) ([]int, error) {
	if s.fields == nil {
		s.fields = s.opts.Fields
		if len(s.fields) == 0 {
			s.fields = header
		}
		s.columns = make([]columnType, len(s.fields))
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	projection := make([]int, len(s.fields))
	for i, field := range s.fields {
		col, ok := columns[field]
		if !ok {
			return nil, fmt.Errorf("input %s has no column %s", path, field)
		}
		projection[i] = col
	}
	return projection, nil
}

// emit schedules a batch to be written
func (s *splitter) emit(rows [][]string, shuffle bool) error {
	if shuffle {
		s.rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
	}
	index := len(s.meta.OutputFiles)
	name := strconv.Itoa(index) + ".csv"
	if s.opts.Compress {
		name += ".zst"
	}
	s.meta.OutputFiles = append(s.meta.OutputFiles, OutputFile{Index: index, Path: name, NumRows: int64(len(rows))})
	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		return err
	}
	s.group.Go(func() error {
		defer s.sem.Release(1)
		return writeBatch(filepath.Join(s.opts.OutputDir, name), rows, s.opts.Compress)
	})
	return nil
}

func writeBatch(path string, rows [][]string, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	var out io.Writer = f
	if compress {
		encoder, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := encoder.Close(); err == nil {
				err = cerr
			}
		}()
		out = encoder
	}
	writer := csv.NewWriter(out)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
