/*
Package mongostream provides a stream.Stream that reads examples from a
MongoDB collection.
*/
package mongostream

import (
	"context"
	"fmt"
	"io"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/stream"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

/*
Stream is a stream.Stream reading examples from the documents of a
MongoDB collection. Each document is expected to hold one property per
schema feature, named after it: string properties for discrete
features, numeric properties for continuous ones.
*/
type Stream struct {
	iter   *mgo.Iter
	schema *feature.Schema
}

/*
Open takes a MongoDB database session, a collection name and a schema
and returns a Stream with the examples read from the documents of the
collection on the session's default database. The returned stream
should be closed after use.
*/
func Open(session *mgo.Session, collection string, schema *feature.Schema) *Stream {
	iter := session.DB("").C(collection).Find(nil).Iter()
	return &Stream{iter: iter, schema: schema}
}

/*
Next returns the example read from the next document, io.EOF when the
collection is exhausted, or an error when a document cannot be read or
does not conform to the schema.
*/
func (s *Stream) Next(ctx context.Context) (*sapling.Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc bson.M
	if !s.iter.Next(&doc) {
		if err := s.iter.Err(); err != nil {
			return nil, fmt.Errorf("reading examples from mongo: %v", err)
		}
		return nil, io.EOF
	}
	values := make(map[string]interface{}, s.schema.Len())
	for _, f := range s.schema.Features() {
		if v, ok := doc[f.Name()]; ok {
			values[f.Name()] = v
		}
	}
	e, err := stream.ExampleFromValues(s.schema, values)
	if err != nil {
		return nil, fmt.Errorf("reading example document: %v", err)
	}
	return e, nil
}

/*
Close releases the stream's underlying cursor.
*/
func (s *Stream) Close() error {
	return s.iter.Close()
}
