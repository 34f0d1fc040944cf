package feature

import "fmt"

/*
Feature represents an attribute that can be observed on every example of
a stream.
*/
type Feature interface {
	Name() string
	Valid(interface{}) (bool, error)
}

/*
DiscreteFeature represents an attribute that can only take a value among
a finite set. Every available value is mapped to its index in the set, so
that the learning engine can keep counts in slices instead of maps of
strings.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
	valueIndexes    map[string]int
}

/*
ContinuousFeature represents an attribute that can take any float64
value.
*/
type ContinuousFeature struct {
	name string
}

/*
NewDiscreteFeature takes a name string and a slice of available value
strings and returns a discrete feature with the given name and available
values.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	valueIndexes := make(map[string]int, len(availableValues))
	for i, v := range availableValues {
		valueIndexes[v] = i
	}
	return &DiscreteFeature{name, availableValues, valueIndexes}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature
with the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

/*
Name returns a string with the name of the feature
*/
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Valid receives an interface value and returns a boolean and an error.
When the value parameter is a string included in the available values of
the feature, the method returns true and nil. Otherwise it returns false
and an error describing the reason.
*/
func (df *DiscreteFeature) Valid(value interface{}) (bool, error) {
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("discrete feature %s expects string value, got %T value", df.Name(), value)
	}
	if _, ok = df.valueIndexes[vs]; !ok {
		return false, fmt.Errorf("discrete feature %s got unknown value %s", df.Name(), vs)
	}
	return true, nil
}

/*
AvailableValues returns a string slice with the values available for the
feature
*/
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

/*
IndexOf takes a value string and returns its index among the available
values of the feature, or -1 if the value is not available.
*/
func (df *DiscreteFeature) IndexOf(value string) int {
	i, ok := df.valueIndexes[value]
	if !ok {
		return -1
	}
	return i
}

/*
ValueAt takes an index and returns the available value it maps to, or an
error when the index is out of range.
*/
func (df *DiscreteFeature) ValueAt(index int) (string, error) {
	if index < 0 || index >= len(df.availableValues) {
		return "", fmt.Errorf("discrete feature %s has no value with index %d", df.Name(), index)
	}
	return df.availableValues[index], nil
}

func (df *DiscreteFeature) String() string {
	return df.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

/*
Valid receives an interface value and returns a boolean and an error.
When the value parameter is a float64 it returns true and nil, otherwise
it returns false and an error describing the reason.
*/
func (cf *ContinuousFeature) Valid(value interface{}) (bool, error) {
	_, ok := value.(float64)
	if !ok {
		return false, fmt.Errorf("continuous feature %s expects float64 value, got %T value", cf.Name(), value)
	}
	return true, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}
