package yaml

import (
	"testing"

	"github.com/pbanos/sapling/feature"
)

const weatherYML = `
features:
  outlook: [sunny, overcast, rainy]
  temperature: continuous
  windy: [false, true]
  play: [no, yes]
`

func TestReadSchema(t *testing.T) {
	schema, err := ReadSchema([]byte(weatherYML))
	if err != nil {
		t.Fatalf("expected schema to parse, got %v", err)
	}
	if got := schema.Len(); got != 4 {
		t.Fatalf("expected 4 features, got %d", got)
	}
	if got := schema.Target().Name(); got != "play" {
		t.Errorf("expected the last declared feature play to be the target, got %s", got)
	}
	outlook, ok := schema.Features()[0].(*feature.DiscreteFeature)
	if !ok || outlook.Name() != "outlook" {
		t.Fatalf("expected the first feature to be the discrete outlook, got %v", schema.Features()[0])
	}
	if got := outlook.AvailableValues(); len(got) != 3 || got[0] != "sunny" {
		t.Errorf("expected outlook values [sunny overcast rainy], got %v", got)
	}
	if _, ok := schema.Features()[1].(*feature.ContinuousFeature); !ok {
		t.Errorf("expected temperature to be continuous, got %v", schema.Features()[1])
	}
}

func TestReadSchemaWithExplicitTarget(t *testing.T) {
	schema, err := ReadSchema([]byte(weatherYML + "target: outlook\n"))
	if err != nil {
		t.Fatalf("expected schema to parse, got %v", err)
	}
	if got := schema.Target().Name(); got != "outlook" {
		t.Errorf("expected target outlook, got %s", got)
	}
	if got := schema.Len(); got != 4 {
		t.Errorf("expected the reordered schema to keep 4 features, got %d", got)
	}
}

func TestReadSchemaRejectsInvalidKind(t *testing.T) {
	if _, err := ReadSchema([]byte("features:\n  temperature: warmish\n  play: [no, yes]\n")); err == nil {
		t.Error("expected an invalid feature kind to be rejected")
	}
}

func TestReadSchemaRejectsMissingFeatures(t *testing.T) {
	if _, err := ReadSchema([]byte("target: play\n")); err == nil {
		t.Error("expected a document without features to be rejected")
	}
}
