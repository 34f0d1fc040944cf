package feature

import "fmt"

/*
Schema is an ordered list of features describing the examples of a
stream. The last feature of the schema is the target the learner
predicts: a DiscreteFeature for classification, a ContinuousFeature for
regression.
*/
type Schema struct {
	features []Feature
	indexes  map[string]int
}

/*
NewSchema takes a slice of features and returns a schema with them, or an
error when the slice has less than two features (at least one input and
the target are needed) or when two features share a name.
*/
func NewSchema(features []Feature) (*Schema, error) {
	if len(features) < 2 {
		return nil, fmt.Errorf("schema needs at least one input feature and a target, got %d features", len(features))
	}
	indexes := make(map[string]int, len(features))
	for i, f := range features {
		if _, ok := indexes[f.Name()]; ok {
			return nil, fmt.Errorf("schema declares feature %s twice", f.Name())
		}
		indexes[f.Name()] = i
	}
	return &Schema{features, indexes}, nil
}

/*
Features returns the schema's features in order, target last.
*/
func (s *Schema) Features() []Feature {
	return s.features
}

/*
Inputs returns the schema's input features, that is, all its features but
the target.
*/
func (s *Schema) Inputs() []Feature {
	return s.features[:len(s.features)-1]
}

/*
Target returns the feature the learner predicts, the last feature of the
schema.
*/
func (s *Schema) Target() Feature {
	return s.features[len(s.features)-1]
}

/*
Len returns the number of features on the schema, the target included.
*/
func (s *Schema) Len() int {
	return len(s.features)
}

/*
At takes an index and returns the feature at that position of the schema
or an error when the index is out of range.
*/
func (s *Schema) At(index int) (Feature, error) {
	if index < 0 || index >= len(s.features) {
		return nil, fmt.Errorf("schema has no feature with index %d", index)
	}
	return s.features[index], nil
}

/*
IndexOf takes a feature name and returns its position on the schema, or
-1 when no feature has that name.
*/
func (s *Schema) IndexOf(name string) int {
	i, ok := s.indexes[name]
	if !ok {
		return -1
	}
	return i
}

/*
IsRegression returns true when the schema's target is a continuous
feature.
*/
func (s *Schema) IsRegression() bool {
	_, ok := s.Target().(*ContinuousFeature)
	return ok
}

/*
Labels returns the available values of the target when it is discrete,
or nil for regression schemas.
*/
func (s *Schema) Labels() []string {
	target, ok := s.Target().(*DiscreteFeature)
	if !ok {
		return nil
	}
	return target.AvailableValues()
}

/*
WithTarget takes a feature name and returns a schema with the same
features reordered so that the named feature is the target, or an error
when the schema has no feature with that name.
*/
func (s *Schema) WithTarget(name string) (*Schema, error) {
	i := s.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("schema has no feature named %s", name)
	}
	features := make([]Feature, 0, len(s.features))
	for j, f := range s.features {
		if j != i {
			features = append(features, f)
		}
	}
	features = append(features, s.features[i])
	return NewSchema(features)
}
