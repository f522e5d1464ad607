package query

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math"

	"github.com/go-sif/progressive/accumulators"
	jsoniter "github.com/json-iterator/go"
	"github.com/pierrec/lz4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Partial is the statistic computed by a single Job, pending merge into its Query's result
type Partial struct {
	QueryID    string                                   // QueryID is the id of the Query which produced this Partial
	Kind       Kind                                     // Kind is the shape of this Partial, which must match its Query
	Partition  int                                      // Partition is the index of the partition this Partial covers
	Groups     map[GroupKey]accumulators.AggregateValue // Groups holds the per-group statistic of grouped queries
	Rows       [][]interface{}                          // Rows holds a page of matching rows for a SelectQuery
	Excluded   uint64                                   // Excluded counts matching rows a histogram could not place in a bin
	NumMatched int64                                    // NumMatched counts the rows of the partition which passed the predicate
}

// wire representations of a Partial. Values are tagged with their kind so that
// int64 and float64 survive the round trip, and floats are carried as bits.
type wireValue struct {
	K PartKind `json:"k"`
	S string   `json:"s,omitempty"`
	I int64    `json:"i,omitempty"`
	F uint64   `json:"f,omitempty"`
	B bool     `json:"b,omitempty"`
}

type wireGroup struct {
	Key   []wireValue `json:"key"`
	Value []byte      `json:"value"`
}

type wirePartial struct {
	QueryID    string        `json:"queryId"`
	Kind       Kind          `json:"kind"`
	Partition  int           `json:"partition"`
	Groups     []wireGroup   `json:"groups,omitempty"`
	Rows       [][]wireValue `json:"rows,omitempty"`
	Excluded   uint64        `json:"excluded"`
	NumMatched int64         `json:"numMatched"`
}

func toWireValue(p KeyPart) wireValue {
	return wireValue{K: p.kind, S: p.s, I: p.i, F: math.Float64bits(p.f), B: p.b}
}

func fromWireValue(w wireValue) KeyPart {
	return KeyPart{kind: w.K, s: w.S, i: w.I, f: math.Float64frombits(w.F), b: w.B}
}

// ToBytes serializes this Partial into a compressed buffer, for transfer between processes
func (p *Partial) ToBytes() ([]byte, error) {
	w := wirePartial{
		QueryID:    p.QueryID,
		Kind:       p.Kind,
		Partition:  p.Partition,
		Excluded:   p.Excluded,
		NumMatched: p.NumMatched,
	}
	for key, value := range p.Groups {
		g := wireGroup{Key: make([]wireValue, key.Len()), Value: value.ToBytes()}
		for i := range g.Key {
			g.Key[i] = toWireValue(key.Part(i))
		}
		w.Groups = append(w.Groups, g)
	}
	for _, row := range p.Rows {
		wrow := make([]wireValue, len(row))
		for i, v := range row {
			wrow[i] = toWireValue(KeyPartOf(v))
		}
		w.Rows = append(w.Rows, wrow)
	}
	data, err := json.Marshal(&w)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	compressor := lz4.NewWriter(buf)
	if _, err := compressor.Write(data); err != nil {
		return nil, err
	}
	if err := compressor.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PartialFromBytes deserializes a Partial produced by ToBytes
func PartialFromBytes(buff []byte) (*Partial, error) {
	data, err := ioutil.ReadAll(lz4.NewReader(bytes.NewReader(buff)))
	if err != nil {
		return nil, fmt.Errorf("unable to decompress partial: %w", err)
	}
	var w wirePartial
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unable to decode partial: %w", err)
	}
	p := &Partial{
		QueryID:    w.QueryID,
		Kind:       w.Kind,
		Partition:  w.Partition,
		Excluded:   w.Excluded,
		NumMatched: w.NumMatched,
	}
	if len(w.Groups) > 0 {
		p.Groups = make(map[GroupKey]accumulators.AggregateValue, len(w.Groups))
	}
	for _, g := range w.Groups {
		var key GroupKey
		switch len(g.Key) {
		case 1:
			key = Key1(fromWireValue(g.Key[0]))
		case 2:
			key = Key2(fromWireValue(g.Key[0]), fromWireValue(g.Key[1]))
		default:
			return nil, fmt.Errorf("group key of partial has %d parts", len(g.Key))
		}
		value, err := accumulators.FromBytes(g.Value)
		if err != nil {
			return nil, err
		}
		p.Groups[key] = value
	}
	for _, wrow := range w.Rows {
		row := make([]interface{}, len(wrow))
		for i, v := range wrow {
			row[i] = fromWireValue(v).Value()
		}
		p.Rows = append(p.Rows, row)
	}
	return p, nil
}
