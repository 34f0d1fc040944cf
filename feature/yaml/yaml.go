/*
Package yaml provides methods to parse feature.Schema specifications,
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"io/ioutil"

	"github.com/pbanos/sapling/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadSchema takes a slice of bytes with a schema specification in YAML and
returns the feature.Schema parsed from it or an error.

The YAML is expected to be an object with a features property and an
optional target property. The value for features should be an object with
a property for each feature, declared either with the string value
'continuous' for continuous features or with a list of valid values for
discrete features. Features keep their declaration order on the schema.
The target property names the feature the learner predicts; when absent,
the last declared feature is the target.
*/
func ReadSchema(md []byte) (*feature.Schema, error) {
	metadata := struct {
		Features yaml.MapSlice
		Target   string
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml schema: %v", err)
	}
	if metadata.Features == nil {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	features := []feature.Feature{}
	for _, item := range metadata.Features {
		fn := fmt.Sprintf("%v", item.Key)
		switch values := item.Value.(type) {
		case string:
			if values != "continuous" {
				return nil, fmt.Errorf("feature %s declared with invalid kind %q", fn, values)
			}
			features = append(features, feature.NewContinuousFeature(fn))
		case []interface{}:
			stringVs := []string{}
			for _, v := range values {
				stringVs = append(stringVs, fmt.Sprintf("%v", v))
			}
			features = append(features, feature.NewDiscreteFeature(fn, stringVs))
		default:
			return nil, fmt.Errorf("invalid declaration of type %T for feature %s", item.Value, fn)
		}
	}
	schema, err := feature.NewSchema(features)
	if err != nil {
		return nil, err
	}
	if metadata.Target != "" {
		schema, err = schema.WithTarget(metadata.Target)
		if err != nil {
			return nil, err
		}
	}
	return schema, nil
}

/*
ReadSchemaFromFile takes a filepath string, reads its contents and uses
ReadSchema to parse it and return the feature.Schema or an error. If the
file indicated by the filepath cannot be opened for reading an error will
be returned.
*/
func ReadSchemaFromFile(filepath string) (*feature.Schema, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading schema yml file %s: %v", filepath, err)
	}
	schema, err := ReadSchema(md)
	if err != nil {
		err = fmt.Errorf("parsing schema yml file %s: %v", filepath, err)
	}
	return schema, err
}
