package query

import (
	"fmt"
	"math"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/accumulators"
	"github.com/go-sif/progressive/bins"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/predicate"
	"github.com/tidwall/gjson"
)

// FromJSON constructs a Query from a client submission, dispatching on its "type".
// Construction fails fast, and consumes no id, if the type is unknown, a field does
// not resolve, the filter is malformed or a parameter is invalid.
func FromJSON(data []byte, dataset progressive.Dataset, ids *IDGenerator) (*Query, error) {
	params, options, err := parseSubmission(data, dataset)
	if err != nil {
		return nil, err
	}
	id, order := ids.Next()
	q, err := New(id, order, dataset, params, options)
	if err != nil {
		return nil, err
	}
	q.submission = append([]byte(nil), data...)
	return q, nil
}

// Rebuild reconstructs the Query with the given id from its original submission, so that a
// remote worker can run its Jobs and produce Partials the owning Query will accept
func Rebuild(id string, submission []byte, dataset progressive.Dataset) (*Query, error) {
	params, options, err := parseSubmission(submission, dataset)
	if err != nil {
		return nil, err
	}
	q, err := New(id, 0, dataset, params, options)
	if err != nil {
		return nil, err
	}
	q.submission = append([]byte(nil), submission...)
	return q, nil
}

func parseSubmission(data []byte, dataset progressive.Dataset) (Params, Options, error) {
	if !gjson.ValidBytes(data) {
		return nil, Options{}, errors.InvalidQueryError{Reason: "submission is not valid JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, Options{}, errors.InvalidQueryError{Reason: "submission is not a JSON object"}
	}
	typeName := doc.Get("type").String()
	kind, ok := KindFromType(typeName)
	if !ok {
		return nil, Options{}, errors.UnknownQueryTypeError{Type: typeName}
	}
	params, err := parseParams(kind, doc, dataset)
	if err != nil {
		return nil, Options{}, err
	}
	if err := validateParams(params); err != nil {
		return nil, Options{}, err
	}
	options, err := parseOptions(doc, dataset)
	if err != nil {
		return nil, Options{}, err
	}
	return params, options, nil
}

func parseOptions(doc gjson.Result, dataset progressive.Dataset) (Options, error) {
	options := Options{Shuffle: true}
	where := doc.Get("where")
	pred, err := predicate.CompileResult(where, dataset.Schema())
	if err != nil {
		return options, err
	}
	if pred != nil {
		options.Where = pred
		options.WhereDesc = where.Raw
		if where.Type == gjson.String {
			options.WhereDesc = where.String()
		}
	}
	if shuffle := doc.Get("shuffle"); shuffle.Exists() {
		if shuffle.Type != gjson.True && shuffle.Type != gjson.False {
			return options, errors.InvalidQueryError{Reason: "shuffle must be a boolean"}
		}
		options.Shuffle = shuffle.Bool()
	}
	if seed := doc.Get("seed"); seed.Exists() {
		if seed.Type != gjson.Number {
			return options, errors.InvalidQueryError{Reason: "seed must be a number"}
		}
		s := seed.Int()
		options.Seed = &s
	}
	return options, nil
}

func parseParams(kind Kind, doc gjson.Result, dataset progressive.Dataset) (Params, error) {
	switch kind {
	case SelectKind:
		return parseSelect(doc, dataset)
	case AggregateKind:
		grouping, err := resolveField(doc, "grouping", dataset)
		if err != nil {
			return nil, err
		}
		target, err := resolveField(doc, "target", dataset)
		if err != nil {
			return nil, err
		}
		operator, err := accumulators.ParseOperator(doc.Get("aggregate").String())
		if err != nil {
			return nil, errors.InvalidQueryError{Reason: err.Error()}
		}
		return &AggregateParams{Grouping: grouping, Target: target, Operator: operator}, nil
	case Frequency1DKind:
		grouping, err := resolveField(doc, "grouping", dataset)
		if err != nil {
			return nil, err
		}
		return &Frequency1DParams{Grouping: grouping}, nil
	case Frequency2DKind:
		grouping1, err := resolveField(doc, "grouping1", dataset)
		if err != nil {
			return nil, err
		}
		grouping2, err := resolveField(doc, "grouping2", dataset)
		if err != nil {
			return nil, err
		}
		return &Frequency2DParams{Grouping1: grouping1, Grouping2: grouping2}, nil
	case Histogram1DKind:
		grouping, err := resolveField(doc, "grouping", dataset)
		if err != nil {
			return nil, err
		}
		spec, err := parseBinSpec(doc, "start", "end", "numBins")
		if err != nil {
			return nil, err
		}
		return &Histogram1DParams{Grouping: grouping, Bins: spec}, nil
	case Histogram2DKind:
		grouping1, err := resolveField(doc, "grouping1", dataset)
		if err != nil {
			return nil, err
		}
		grouping2, err := resolveField(doc, "grouping2", dataset)
		if err != nil {
			return nil, err
		}
		spec1, err := parseBinSpec(doc, "start1", "end1", "numBins1")
		if err != nil {
			return nil, err
		}
		spec2, err := parseBinSpec(doc, "start2", "end2", "numBins2")
		if err != nil {
			return nil, err
		}
		return &Histogram2DParams{Grouping1: grouping1, Bins1: spec1, Grouping2: grouping2, Bins2: spec2}, nil
	}
	return nil, errors.UnknownQueryTypeError{Type: kind.String()}
}

func parseSelect(doc gjson.Result, dataset progressive.Dataset) (Params, error) {
	params := &SelectParams{Limit: DefaultSelectLimit}
	if fields := doc.Get("fields"); fields.Exists() {
		if !fields.IsArray() {
			return nil, errors.InvalidQueryError{Reason: "fields must be a list"}
		}
		for _, f := range fields.Array() {
			field, err := fieldFromResult(f, "fields", dataset)
			if err != nil {
				return nil, err
			}
			params.Fields = append(params.Fields, field)
		}
	}
	if limit := doc.Get("limit"); limit.Exists() {
		if limit.Type != gjson.Number || limit.Int() <= 0 || float64(limit.Int()) != limit.Float() {
			return nil, errors.InvalidQueryError{Reason: fmt.Sprintf("limit must be a positive integer, was %s", limit.Raw)}
		}
		params.Limit = int(limit.Int())
	}
	return params, nil
}

// resolveField resolves a field reference, given either as a name or as {"name": ...}
func resolveField(doc gjson.Result, key string, dataset progressive.Dataset) (progressive.Field, error) {
	ref := doc.Get(key)
	if !ref.Exists() {
		return nil, errors.InvalidQueryError{Reason: fmt.Sprintf("missing %s", key)}
	}
	return fieldFromResult(ref, key, dataset)
}

func fieldFromResult(ref gjson.Result, key string, dataset progressive.Dataset) (progressive.Field, error) {
	if ref.IsObject() {
		ref = ref.Get("name")
	}
	if ref.Type != gjson.String {
		return nil, errors.InvalidQueryError{Reason: fmt.Sprintf("%s must name a field", key)}
	}
	return dataset.FieldByName(ref.String())
}

func parseBinSpec(doc gjson.Result, startKey string, endKey string, numBinsKey string) (bins.BinSpec, error) {
	start, end, numBins := doc.Get(startKey), doc.Get(endKey), doc.Get(numBinsKey)
	for i, v := range []gjson.Result{start, end, numBins} {
		if v.Type != gjson.Number {
			key := []string{startKey, endKey, numBinsKey}[i]
			return bins.BinSpec{}, errors.InvalidQueryError{Reason: fmt.Sprintf("%s must be a number", key)}
		}
	}
	if numBins.Float() != math.Trunc(numBins.Float()) {
		return bins.BinSpec{}, errors.InvalidBinSpecError{Start: start.Float(), End: end.Float(), NumBins: int(numBins.Int())}
	}
	return bins.New(start.Float(), end.Float(), int(numBins.Int()))
}
