package csv

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pbanos/sapling/feature"
)

func weatherSchema(t *testing.T) *feature.Schema {
	t.Helper()
	schema, err := feature.NewSchema([]feature.Feature{
		feature.NewDiscreteFeature("outlook", []string{"sunny", "overcast", "rainy"}),
		feature.NewContinuousFeature("temperature"),
		feature.NewDiscreteFeature("play", []string{"no", "yes"}),
	})
	if err != nil {
		t.Fatalf("expected schema to build, got %v", err)
	}
	return schema
}

func TestStreamReadsExamplesInSchemaOrder(t *testing.T) {
	content := "temperature,play,outlook\n85,no,sunny\n64,yes,overcast\n"
	s, err := New(strings.NewReader(content), weatherSchema(t))
	if err != nil {
		t.Fatalf("expected stream to build, got %v", err)
	}
	ctx := context.Background()
	e, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("expected the first example to parse, got %v", err)
	}
	if e.Values[0].Index != 0 || e.Values[1].Num != 85.0 || e.Label != 0 {
		t.Errorf("expected (sunny, 85, no), got (%d, %v, %d)", e.Values[0].Index, e.Values[1].Num, e.Label)
	}
	e, err = s.Next(ctx)
	if err != nil {
		t.Fatalf("expected the second example to parse, got %v", err)
	}
	if e.Values[0].Index != 1 || e.Values[1].Num != 64.0 || e.Label != 1 {
		t.Errorf("expected (overcast, 64, yes), got (%d, %v, %d)", e.Values[0].Index, e.Values[1].Num, e.Label)
	}
	if _, err = s.Next(ctx); err != io.EOF {
		t.Errorf("expected io.EOF after the last example, got %v", err)
	}
}

func TestStreamRejectsHeaderMissingFeatures(t *testing.T) {
	content := "outlook,temperature\nsunny,85\n"
	if _, err := New(strings.NewReader(content), weatherSchema(t)); err == nil {
		t.Error("expected a header without the target column to be rejected")
	}
}

func TestStreamRejectsUnknownValues(t *testing.T) {
	content := "outlook,temperature,play\nfoggy,85,no\n"
	s, err := New(strings.NewReader(content), weatherSchema(t))
	if err != nil {
		t.Fatalf("expected stream to build, got %v", err)
	}
	if _, err = s.Next(context.Background()); err == nil {
		t.Error("expected an unknown discrete value to be rejected")
	}
}
