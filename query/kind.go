package query

import (
	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/accumulators"
	"github.com/go-sif/progressive/bins"
)

// Kind identifies the shape of a Query, and of the Partials its Jobs produce
type Kind int

const (
	// SelectKind returns pages of matching rows
	SelectKind Kind = iota
	// AggregateKind computes a statistic of a target field per group
	AggregateKind
	// Frequency1DKind counts rows per value of one field
	Frequency1DKind
	// Frequency2DKind counts rows per pair of values of two fields
	Frequency2DKind
	// Histogram1DKind counts rows per bin of one numeric field
	Histogram1DKind
	// Histogram2DKind counts rows per pair of bins of two numeric fields
	Histogram2DKind
)

var kindTypeNames = []string{
	"SelectQuery",
	"AggregateQuery",
	"Frequency1DQuery",
	"Frequency2DQuery",
	"Histogram1DQuery",
	"Histogram2DQuery",
}

// String returns the type discriminator used for this Kind in query submissions and snapshots
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTypeNames) {
		return "UnknownQuery"
	}
	return kindTypeNames[k]
}

// KindFromType maps a type discriminator to a Kind
func KindFromType(typeName string) (Kind, bool) {
	for i, name := range kindTypeNames {
		if name == typeName {
			return Kind(i), true
		}
	}
	return 0, false
}

// Priority returns the scheduling priority of a Kind. Lower values are scheduled first.
func (k Kind) Priority() int {
	if k == SelectKind {
		return 0
	}
	return 1
}

// Params holds the variant-specific parameters of a Query.
// The set of implementations is closed.
type Params interface {
	Kind() Kind
	params()
}

// SelectParams are the parameters of a SelectQuery
type SelectParams struct {
	Fields []progressive.Field // Fields is the projection of each returned row; all fields if empty
	Limit  int                 // Limit is the maximum number of rows in a page
}

// AggregateParams are the parameters of an AggregateQuery
type AggregateParams struct {
	Grouping progressive.Field
	Target   progressive.Field
	Operator accumulators.Operator
}

// Frequency1DParams are the parameters of a Frequency1DQuery
type Frequency1DParams struct {
	Grouping progressive.Field
}

// Frequency2DParams are the parameters of a Frequency2DQuery
type Frequency2DParams struct {
	Grouping1 progressive.Field
	Grouping2 progressive.Field
}

// Histogram1DParams are the parameters of a Histogram1DQuery
type Histogram1DParams struct {
	Grouping progressive.Field
	Bins     bins.BinSpec
}

// Histogram2DParams are the parameters of a Histogram2DQuery
type Histogram2DParams struct {
	Grouping1 progressive.Field
	Bins1     bins.BinSpec
	Grouping2 progressive.Field
	Bins2     bins.BinSpec
}

// Kind returns SelectKind
func (p *SelectParams) Kind() Kind { return SelectKind }

// Kind returns AggregateKind
func (p *AggregateParams) Kind() Kind { return AggregateKind }

// Kind returns Frequency1DKind
func (p *Frequency1DParams) Kind() Kind { return Frequency1DKind }

// Kind returns Frequency2DKind
func (p *Frequency2DParams) Kind() Kind { return Frequency2DKind }

// Kind returns Histogram1DKind
func (p *Histogram1DParams) Kind() Kind { return Histogram1DKind }

// Kind returns Histogram2DKind
func (p *Histogram2DParams) Kind() Kind { return Histogram2DKind }

func (p *SelectParams) params()      {}
func (p *AggregateParams) params()   {}
func (p *Frequency1DParams) params() {}
func (p *Frequency2DParams) params() {}
func (p *Histogram1DParams) params() {}
func (p *Histogram2DParams) params() {}
