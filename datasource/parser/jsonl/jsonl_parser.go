package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource"
	"github.com/go-sif/progressive/logging"
)

// ParserConf configures a JSONL Parser, suitable for JSON lines data
type ParserConf struct {
	InitialCapacity int    // The expected number of rows in a partition. Defaults to 128.
	HeaderLines     int    // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Comment         string // Lines beginning with the comment prefix are ignored. Defaults to no comment prefix.
	MaxBufferSize   int    // Maximum size in bytes of the buffer used to read lines from the file
	Logger          *logging.Logger
}

// Parser produces partitions from JSONL data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser. Fields are parsed from each row of JSON using their name, which should be a gjson path. Values within the JSON which do not correspond to a Schema field are ignored.
func CreateParser(conf *ParserConf) *Parser {
	if conf.InitialCapacity == 0 {
		conf.InitialCapacity = 128
	}
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	if conf.Logger == nil {
		conf.Logger = logging.Nop()
	}
	return &Parser{conf: conf}
}

// Parse parses the JSONL data of a single partition. Blank lines are skipped.
func (p *Parser) Parse(r io.Reader, schema progressive.Schema) (progressive.BuildablePartition, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxBufferSize)
	part := datasource.CreateBuildablePartition(p.conf.InitialCapacity, schema)
	fields := schema.Fields()
	for line := 1; scanner.Scan(); line++ {
		if line <= p.conf.HeaderLines {
			continue
		}
		rowString := scanner.Text()
		trimmed := strings.TrimSpace(rowString)
		if len(trimmed) == 0 || (len(p.conf.Comment) > 0 && strings.HasPrefix(trimmed, p.conf.Comment)) {
			continue
		}
		values, err := scanRow(fields, rowString)
		if err != nil {
			p.conf.Logger.Warnf("Unable to parse line %d:\n\t%s", line, rowString)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := part.AppendRowData(values); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return part, nil
}
