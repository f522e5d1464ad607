package progressive

// Predicate is an immutable boolean test applied to Rows before aggregation.
// Predicates are side-effect free, and safe to share between concurrently
// executing Jobs. A nil Predicate matches every Row.
type Predicate interface {
	Test(row Row) bool // Test returns true iff the row passes this Predicate
	String() string    // String returns the canonical description this Predicate was compiled from
}
