package progressive

// RowOperation - A generic function for visiting Rows
type RowOperation func(row Row) error
