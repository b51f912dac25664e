package model

import "context"

// Source is one side of a comparison: a database, a set of raw files or a
// document store that can answer a query with a table of text cells.
type Source interface {
	Name() string
	Query(ctx context.Context, query string) (*Rows, error)
	Close() error
}

// Rows is a fully read query result. A nil cell is a NULL.
type Rows struct {
	Columns []string
	Values  [][]*string
}

func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}
