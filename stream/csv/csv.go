/*
Package csv provides a stream.Stream that parses examples from CSV
content.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
)

/*
Stream is a stream.Stream reading examples from CSV content. The header
or first row of the content is expected to hold the names of all the
schema's features, in any order; every following row must hold a valid
value for each.
*/
type Stream struct {
	r      *csv.Reader
	schema *feature.Schema
	order  []int
	line   int
	closer io.Closer
}

/*
New takes an io.Reader for a CSV stream and a schema and returns a
Stream with the examples parsed from the reader, or an error when the
header cannot be read or does not cover the schema.
*/
func New(reader io.Reader, schema *feature.Schema) (*Stream, error) {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %v", err)
	}
	order := make([]int, schema.Len())
	for i, f := range schema.Features() {
		order[i] = -1
		for j, name := range header {
			if name == f.Name() {
				order[i] = j
				break
			}
		}
		if order[i] < 0 {
			return nil, fmt.Errorf("CSV header has no column for feature %s", f.Name())
		}
	}
	return &Stream{r: r, schema: schema, order: order, line: 1}, nil
}

/*
NewFromFilePath takes a filepath string and a schema, opens the file for
reading (os.Stdin when the filepath is "") and returns a Stream with
the examples parsed from it, or an error. The returned stream should be
closed after use.
*/
func NewFromFilePath(filepath string, schema *feature.Schema) (*Stream, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("opening CSV file: %v", err)
		}
	}
	s, err := New(f, schema)
	if err != nil {
		if filepath != "" {
			f.Close()
		}
		return nil, fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	if filepath != "" {
		s.closer = f
	}
	return s, nil
}

/*
Next returns the example parsed from the next CSV row, io.EOF when the
content is exhausted, or an error when the row cannot be read or does
not conform to the schema.
*/
func (s *Stream) Next(ctx context.Context) (*sapling.Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, err := s.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV body: %v", err)
	}
	s.line++
	fields := make([]string, len(s.order))
	for i, j := range s.order {
		if j >= len(row) {
			return nil, fmt.Errorf("parsing CSV line %d: row has %d columns, header has more", s.line, len(row))
		}
		fields[i] = row[j]
	}
	e, err := sapling.ParseExample(s.schema, fields)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV line %d: %v", s.line, err)
	}
	return e, nil
}

/*
Close releases the stream's underlying file, when it owns one.
*/
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
