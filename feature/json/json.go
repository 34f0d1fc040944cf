/*
Package json provides methods to serialize feature.Schema specifications
as JSON documents and parse them back. Checkpoints embed schemas
encoded with this package so that a tree can be restored without its
original metadata file.
*/
package json

import (
	"encoding/json"
	"fmt"

	"github.com/pbanos/sapling/feature"
)

type jsonFeature struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Values []string `json:"values,omitempty"`
}

type jsonSchema struct {
	Features []jsonFeature `json:"features"`
}

const (
	discreteKind   = "discrete"
	continuousKind = "continuous"
)

/*
MarshalSchema takes a feature.Schema and returns a slice of bytes with
the schema encoded as JSON or an error. Features are encoded in schema
order, target last, each as an object with its name, its kind and, for
discrete features, its available values.
*/
func MarshalSchema(s *feature.Schema) ([]byte, error) {
	js := &jsonSchema{}
	for _, f := range s.Features() {
		switch f := f.(type) {
		case *feature.DiscreteFeature:
			js.Features = append(js.Features, jsonFeature{f.Name(), discreteKind, f.AvailableValues()})
		case *feature.ContinuousFeature:
			js.Features = append(js.Features, jsonFeature{Name: f.Name(), Kind: continuousKind})
		default:
			return nil, fmt.Errorf("marshalling schema: unknown feature type %T", f)
		}
	}
	return json.Marshal(js)
}

/*
UnmarshalSchema takes a slice of bytes with a schema encoded as JSON by
MarshalSchema and returns the feature.Schema parsed from it or an error.
*/
func UnmarshalSchema(data []byte) (*feature.Schema, error) {
	js := &jsonSchema{}
	err := json.Unmarshal(data, js)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling schema: %v", err)
	}
	features := make([]feature.Feature, 0, len(js.Features))
	for _, jf := range js.Features {
		switch jf.Kind {
		case discreteKind:
			features = append(features, feature.NewDiscreteFeature(jf.Name, jf.Values))
		case continuousKind:
			features = append(features, feature.NewContinuousFeature(jf.Name))
		default:
			return nil, fmt.Errorf("unmarshalling schema: feature %s has unknown kind %q", jf.Name, jf.Kind)
		}
	}
	return feature.NewSchema(features)
}
