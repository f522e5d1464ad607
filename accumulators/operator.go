package accumulators

import (
	"fmt"
	"math"
	"strings"
)

// Operator names the statistic an aggregate query reports from each group's AggregateValue
type Operator string

const (
	// CountOperator reports the number of non-missing values
	CountOperator Operator = "count"
	// SumOperator reports the sum of values
	SumOperator Operator = "sum"
	// MeanOperator reports the arithmetic mean of values
	MeanOperator Operator = "mean"
	// MinOperator reports the smallest value
	MinOperator Operator = "min"
	// MaxOperator reports the largest value
	MaxOperator Operator = "max"
	// VarianceOperator reports the population variance of values
	VarianceOperator Operator = "variance"
	// StddevOperator reports the population standard deviation of values
	StddevOperator Operator = "stddev"
)

// ParseOperator resolves an operator name, accepting a few common aliases
func ParseOperator(name string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "count":
		return CountOperator, nil
	case "sum":
		return SumOperator, nil
	case "mean", "avg", "average":
		return MeanOperator, nil
	case "min":
		return MinOperator, nil
	case "max":
		return MaxOperator, nil
	case "variance", "var":
		return VarianceOperator, nil
	case "stddev", "std":
		return StddevOperator, nil
	}
	return "", fmt.Errorf("unsupported aggregate operator %q", name)
}

// Evaluate computes this Operator's statistic. It returns NaN where the statistic is undefined.
func (op Operator) Evaluate(a AggregateValue) float64 {
	switch op {
	case CountOperator:
		return float64(a.Count)
	case SumOperator:
		return a.Sum
	case MeanOperator:
		return a.Mean()
	case MinOperator:
		if a.Count == 0 {
			return math.NaN()
		}
		return a.Min
	case MaxOperator:
		if a.Count == 0 {
			return math.NaN()
		}
		return a.Max
	case VarianceOperator:
		return a.Variance()
	case StddevOperator:
		return a.Stddev()
	}
	return math.NaN()
}
