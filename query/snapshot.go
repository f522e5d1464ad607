package query

import (
	"math"
)

// Snapshot returns the current state of this Query in the form sent to clients
func (q *Query) Snapshot() map[string]interface{} {
	q.lock.Lock()
	result := q.getResultLocked()
	if result == nil {
		result = [][]interface{}{}
	}
	snapshot := map[string]interface{}{
		"id":                 q.id,
		"type":               q.Kind().String(),
		"order":              q.order,
		"state":              q.state.String(),
		"numProcessedRows":   q.numProcessedRows,
		"numProcessedBlocks": q.numProcessedBlocks,
		"numBlocks":          len(q.partitions),
		"lastUpdated":        int64(0),
		"done":               q.numProcessedBlocks == len(q.partitions),
		"shuffle":            q.options.Shuffle,
		"result":             result,
	}
	if !q.lastUpdated.IsZero() {
		snapshot["lastUpdated"] = q.lastUpdated.UnixNano() / 1e6
	}
	if q.options.Where != nil {
		snapshot["where"] = q.options.WhereDesc
	}
	numExcluded := q.numExcludedRows
	q.lock.Unlock()

	switch p := q.params.(type) {
	case *SelectParams:
		fields := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = f.Name()
		}
		snapshot["fields"] = fields
		snapshot["limit"] = p.Limit
	case *AggregateParams:
		snapshot["grouping"] = p.Grouping.Name()
		snapshot["target"] = p.Target.Name()
		snapshot["aggregate"] = string(p.Operator)
	case *Frequency1DParams:
		snapshot["grouping"] = p.Grouping.Name()
	case *Frequency2DParams:
		snapshot["grouping1"] = p.Grouping1.Name()
		snapshot["grouping2"] = p.Grouping2.Name()
	case *Histogram1DParams:
		snapshot["grouping"] = p.Grouping.Name()
		snapshot["start"] = p.Bins.Start
		snapshot["end"] = p.Bins.End
		snapshot["numBins"] = p.Bins.NumBins
		snapshot["numExcludedRows"] = numExcluded
	case *Histogram2DParams:
		snapshot["grouping1"] = p.Grouping1.Name()
		snapshot["start1"] = p.Bins1.Start
		snapshot["end1"] = p.Bins1.End
		snapshot["numBins1"] = p.Bins1.NumBins
		snapshot["grouping2"] = p.Grouping2.Name()
		snapshot["start2"] = p.Bins2.Start
		snapshot["end2"] = p.Bins2.End
		snapshot["numBins2"] = p.Bins2.NumBins
		snapshot["numExcludedRows"] = numExcluded
	}
	return snapshot
}

// ToJSON serializes the current state of this Query
func (q *Query) ToJSON() ([]byte, error) {
	return json.Marshal(sanitize(q.Snapshot()))
}

// sanitize replaces non-finite floats, which JSON cannot represent, with null
func sanitize(snapshot map[string]interface{}) map[string]interface{} {
	rows, ok := snapshot["result"].([][]interface{})
	if !ok {
		return snapshot
	}
	clean := make([][]interface{}, len(rows))
	for r, row := range rows {
		clean[r] = make([]interface{}, len(row))
		for i, v := range row {
			if f, ok := v.(float64); ok {
				clean[r][i] = finiteOrNil(f)
			} else {
				clean[r][i] = v
			}
		}
	}
	snapshot["result"] = clean
	return snapshot
}

func finiteOrNil(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
