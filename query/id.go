package query

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator assigns process-unique, monotonically increasing query ids.
// The zero value is ready to use.
type IDGenerator struct {
	last int64
}

// NewIDGenerator creates an IDGenerator whose first id is Query1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns a new query id and its submission order
func (g *IDGenerator) Next() (string, int64) {
	order := atomic.AddInt64(&g.last, 1)
	return fmt.Sprintf("Query%d", order), order
}
