// Package dsv provides a parser for delimiter-separated partition files, such as CSV
package dsv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	InitialCapacity int    // The expected number of rows in a partition. Defaults to 128.
	HeaderLines     int    // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Delimiter       rune   // The delimiter separating fields in the file. Defaults to ,
	Comment         rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue        string // A special string which represents nil values in the dataset. The empty string is always nil.
}

// Parser produces partitions from DSV data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf.InitialCapacity == 0 {
		conf.InitialCapacity = 128
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	return &Parser{conf: conf}
}

// Parse parses the DSV data of a single partition
func (p *Parser) Parse(r io.Reader, schema progressive.Schema) (progressive.BuildablePartition, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.conf.Delimiter
	reader.Comment = p.conf.Comment
	reader.FieldsPerRecord = schema.NumFields()
	reader.ReuseRecord = true

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		_, err := reader.Read()
		if err == io.EOF {
			return datasource.CreateBuildablePartition(0, schema), nil
		} else if err != nil {
			return nil, err
		}
	}

	part := datasource.CreateBuildablePartition(p.conf.InitialCapacity, schema)
	fields := schema.Fields()
	for line := p.conf.HeaderLines + 1; ; line++ {
		rowStrings, err := reader.Read()
		if err == io.EOF {
			return part, nil
		} else if err != nil {
			return nil, err
		}
		values, err := scanRow(p.conf, fields, rowStrings)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		if err := part.AppendRowData(values); err != nil {
			return nil, err
		}
	}
}
