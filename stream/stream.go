/*
Package stream defines the sources a tree learns from: sequences of
examples pulled one at a time, in arrival order, until exhaustion.

It also provides a Feed helper to pump a whole stream into a tree, and
implementations backed by CSV content, SQL databases and MongoDB
collections in its subpackages.
*/
package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
)

/*
Stream represents a source of examples conforming to a schema.

Its Next method returns the next example of the stream, io.EOF when the
stream is exhausted, or another error when the example cannot be
obtained. The context may allow cancelling the retrieval if the
implementation supports it.
*/
type Stream interface {
	Next(ctx context.Context) (*sapling.Example, error)
}

/*
Feed takes a context, a stream and a tree, pulls examples from the
stream until it is exhausted and processes each on the tree. It returns
the number of examples processed and the first error encountered, if
any: the context's error when it times out or is cancelled, the
stream's when an example cannot be obtained, or the tree's when it
cannot be processed.
*/
func Feed(ctx context.Context, s Stream, t *sapling.Tree) (int, error) {
	var n int
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		e, err := s.Next(ctx)
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err = t.Process(e); err != nil {
			return n, err
		}
		n++
	}
}

/*
ExampleFromValues takes a schema and a map of feature names to values
(string values for discrete features, float64 or integer values for
continuous ones) and returns the example they encode in schema order,
or an error when a value is missing or does not conform to the schema.
*/
func ExampleFromValues(schema *feature.Schema, values map[string]interface{}) (*sapling.Example, error) {
	inputs := make([]sapling.Value, 0, len(schema.Inputs()))
	for _, f := range schema.Inputs() {
		v, err := valueFor(f, values)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}
	switch target := schema.Target().(type) {
	case *feature.DiscreteFeature:
		raw, ok := values[target.Name()]
		if !ok {
			return nil, fmt.Errorf("no value for target %s", target.Name())
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("target %s expects a string value, got %T", target.Name(), raw)
		}
		label := target.IndexOf(s)
		if label < 0 {
			return nil, fmt.Errorf("unknown value %q for target %s", s, target.Name())
		}
		return sapling.NewExample(inputs, label), nil
	case *feature.ContinuousFeature:
		raw, ok := values[target.Name()]
		if !ok {
			return nil, fmt.Errorf("no value for target %s", target.Name())
		}
		num, ok := numeric(raw)
		if !ok {
			return nil, fmt.Errorf("target %s expects a numeric value, got %T", target.Name(), raw)
		}
		return sapling.NewRegressionExample(inputs, num), nil
	}
	return nil, fmt.Errorf("unknown target feature type %T", schema.Target())
}

func valueFor(f feature.Feature, values map[string]interface{}) (sapling.Value, error) {
	raw, ok := values[f.Name()]
	if !ok {
		return sapling.Value{}, fmt.Errorf("no value for feature %s", f.Name())
	}
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		s, ok := raw.(string)
		if !ok {
			return sapling.Value{}, fmt.Errorf("feature %s expects a string value, got %T", f.Name(), raw)
		}
		index := f.IndexOf(s)
		if index < 0 {
			return sapling.Value{}, fmt.Errorf("unknown value %q for feature %s", s, f.Name())
		}
		return sapling.DiscreteValue(index), nil
	case *feature.ContinuousFeature:
		num, ok := numeric(raw)
		if !ok {
			return sapling.Value{}, fmt.Errorf("feature %s expects a numeric value, got %T", f.Name(), raw)
		}
		return sapling.ContinuousValue(num), nil
	}
	return sapling.Value{}, fmt.Errorf("unknown feature type %T", f)
}

func numeric(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
