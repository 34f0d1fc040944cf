/*
Package sqlstream provides a stream.Stream that reads examples from a
table on a SQL database, through an Adapter that absorbs the dialect
differences between backends.
*/
package sqlstream

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/stream"
)

/*
Adapter is an interface for the database/sql backends a Stream can read
from.

Its DB method returns the database handle to query.

Its SelectStatement method takes a table name and a slice of column
names and returns the dialect's statement to select those columns from
that table, or an error when a name cannot be safely quoted.
*/
type Adapter interface {
	DB() *sql.DB
	SelectStatement(table string, columns []string) (string, error)
}

/*
Stream is a stream.Stream reading examples from the rows of a table.
The table is expected to have one column per schema feature, named
after it: text columns for discrete features, numeric columns for
continuous ones.
*/
type Stream struct {
	rows   *sql.Rows
	schema *feature.Schema
}

/*
New takes a context, an adapter, a table name and a schema, queries the
table for every schema feature's column and returns a Stream with the
examples read from the rows, or an error when the query fails. The
returned stream should be closed after use.
*/
func New(ctx context.Context, adapter Adapter, table string, schema *feature.Schema) (*Stream, error) {
	columns := make([]string, 0, schema.Len())
	for _, f := range schema.Features() {
		columns = append(columns, f.Name())
	}
	stmt, err := adapter.SelectStatement(table, columns)
	if err != nil {
		return nil, fmt.Errorf("querying examples: %v", err)
	}
	rows, err := adapter.DB().QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying examples: %v", err)
	}
	return &Stream{rows: rows, schema: schema}, nil
}

/*
Next returns the example read from the next row, io.EOF when the rows
are exhausted, or an error when a row cannot be scanned or does not
conform to the schema.
*/
func (s *Stream) Next(ctx context.Context) (*sapling.Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("reading examples: %v", err)
		}
		return nil, io.EOF
	}
	dests := make([]interface{}, s.schema.Len())
	for i, f := range s.schema.Features() {
		if _, ok := f.(*feature.DiscreteFeature); ok {
			dests[i] = new(string)
		} else {
			dests[i] = new(float64)
		}
	}
	if err := s.rows.Scan(dests...); err != nil {
		return nil, fmt.Errorf("scanning example row: %v", err)
	}
	values := make(map[string]interface{}, s.schema.Len())
	for i, f := range s.schema.Features() {
		switch d := dests[i].(type) {
		case *string:
			values[f.Name()] = *d
		case *float64:
			values[f.Name()] = *d
		}
	}
	e, err := stream.ExampleFromValues(s.schema, values)
	if err != nil {
		return nil, fmt.Errorf("reading example row: %v", err)
	}
	return e, nil
}

/*
Close releases the stream's underlying rows.
*/
func (s *Stream) Close() error {
	return s.rows.Close()
}
