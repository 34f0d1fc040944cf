package sapling

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/pbanos/sapling/feature"
)

/*
Value is the observed value of a single input feature on an example:
the index of a discrete feature's value, or the number a continuous
feature took.
*/
type Value struct {
	// Index is the discrete value index, -1 for continuous values.
	Index int
	// Num is the continuous value, unused for discrete values.
	Num float64
}

/*
DiscreteValue returns a Value holding the discrete value with the given
index.
*/
func DiscreteValue(index int) Value {
	return Value{Index: index}
}

/*
ContinuousValue returns a Value holding the given number.
*/
func ContinuousValue(num float64) Value {
	return Value{Index: -1, Num: num}
}

// placement records a leaf whose statistics include an example, and,
// per continuous feature, the id of the histogram bin the example's
// value fell into, so that the contribution can be reversed when the
// example is forgotten.
type placement struct {
	leafID int
	binIDs map[int]int
}

/*
Example is a single record of the stream: one Value per input feature in
schema order, plus the target as a label index (classification) or a
float64 (regression). The tree annotates the example while processing it
with the leaves that accumulated it, so that it can be forgotten when it
leaves the window.
*/
type Example struct {
	// Values holds one value per input feature, in schema order.
	Values []Value
	// Label is the target value index for classification, -1 for
	// regression examples.
	Label int
	// Target is the target value for regression examples.
	Target float64

	seq        uint64
	placements []placement
}

/*
NewExample takes a slice of input values and a label index and returns a
classification example.
*/
func NewExample(values []Value, label int) *Example {
	return &Example{Values: values, Label: label}
}

/*
NewRegressionExample takes a slice of input values and a target value
and returns a regression example.
*/
func NewRegressionExample(values []Value, target float64) *Example {
	return &Example{Values: values, Label: -1, Target: target}
}

/*
LeafID returns the id of the main-tree leaf whose statistics currently
include the example, or 0 when the example has not been processed yet.
*/
func (e *Example) LeafID() int {
	if len(e.placements) == 0 {
		return 0
	}
	// alternate-subtree leaves are placed during the descent, the main
	// leaf last
	return e.placements[len(e.placements)-1].leafID
}

/*
BinID takes an input feature index and returns the id of the histogram
bin the example fell into at its main-tree leaf, or 0 when the example
has not been processed or the feature is not continuous.
*/
func (e *Example) BinID(featureIndex int) int {
	if len(e.placements) == 0 {
		return 0
	}
	return e.placements[len(e.placements)-1].binIDs[featureIndex]
}

func (e *Example) place(leafID int, binIDs map[int]int) {
	e.placements = append(e.placements, placement{leafID, binIDs})
}

// hash mixes the example's sequence number, values and target into a
// 64-bit FNV-1a hash, used as its identity in a node's seen set.
func (e *Example) hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	put(e.seq)
	put(uint64(int64(e.Label)))
	put(math.Float64bits(e.Target))
	for _, v := range e.Values {
		put(uint64(int64(v.Index)))
		put(math.Float64bits(v.Num))
	}
	return h.Sum64()
}

/*
ParseExample takes a schema and a slice of value strings, one per schema
feature in schema order, target last, and returns the example they
encode or an error. Values of discrete features must be available values
of the feature; values of continuous features must parse as float64
numbers.
*/
func ParseExample(schema *feature.Schema, fields []string) (*Example, error) {
	if len(fields) != schema.Len() {
		return nil, ValidationError(fmt.Sprintf("example has %d values, schema expects %d", len(fields), schema.Len()))
	}
	values := make([]Value, 0, schema.Len()-1)
	for i, f := range schema.Inputs() {
		v, err := parseValue(f, fields[i])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	targetField := fields[schema.Len()-1]
	switch target := schema.Target().(type) {
	case *feature.DiscreteFeature:
		label := target.IndexOf(targetField)
		if label < 0 {
			return nil, ValidationError(fmt.Sprintf("unknown value %q for target %s", targetField, target.Name()))
		}
		return NewExample(values, label), nil
	case *feature.ContinuousFeature:
		num, err := strconv.ParseFloat(targetField, 64)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("invalid value %q for target %s: %v", targetField, target.Name(), err))
		}
		return NewRegressionExample(values, num), nil
	}
	return nil, ValidationError(fmt.Sprintf("unknown target feature type %T", schema.Target()))
}

/*
ParseInputs takes a schema and a slice of value strings, one per input
feature in schema order, and returns an example holding them with no
target, suitable for prediction, or an error when a value does not
conform to the schema.
*/
func ParseInputs(schema *feature.Schema, fields []string) (*Example, error) {
	inputs := schema.Inputs()
	if len(fields) != len(inputs) {
		return nil, ValidationError(fmt.Sprintf("example has %d values, schema expects %d inputs", len(fields), len(inputs)))
	}
	values := make([]Value, 0, len(inputs))
	for i, f := range inputs {
		v, err := parseValue(f, fields[i])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &Example{Values: values, Label: -1}, nil
}

/*
ParseLine takes a schema, a delimited text line and the delimiter rune
and returns the example parsed from the line with ParseExample, or an
error.
*/
func ParseLine(schema *feature.Schema, line string, delimiter rune) (*Example, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), string(delimiter))
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return ParseExample(schema, fields)
}

func parseValue(f feature.Feature, field string) (Value, error) {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		index := f.IndexOf(field)
		if index < 0 {
			return Value{}, ValidationError(fmt.Sprintf("unknown value %q for discrete feature %s", field, f.Name()))
		}
		return DiscreteValue(index), nil
	case *feature.ContinuousFeature:
		num, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, ValidationError(fmt.Sprintf("invalid value %q for continuous feature %s: %v", field, f.Name(), err))
		}
		return ContinuousValue(num), nil
	}
	return Value{}, ValidationError(fmt.Sprintf("unknown feature type %T", f))
}
