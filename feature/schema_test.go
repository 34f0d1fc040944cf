package feature

import "testing"

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema([]Feature{
		NewDiscreteFeature("outlook", []string{"sunny", "overcast", "rainy"}),
		NewContinuousFeature("temperature"),
		NewDiscreteFeature("play", []string{"no", "yes"}),
	})
	if err != nil {
		t.Fatalf("expected schema to build, got %v", err)
	}
	return s
}

func TestSchemaTargetIsLastFeature(t *testing.T) {
	s := testSchema(t)
	if got := s.Target().Name(); got != "play" {
		t.Errorf("expected target play, got %s", got)
	}
	if got := len(s.Inputs()); got != 2 {
		t.Errorf("expected 2 inputs, got %d", got)
	}
	if s.IsRegression() {
		t.Error("expected a discrete target to make a classification schema")
	}
	if got := s.Labels(); len(got) != 2 || got[0] != "no" || got[1] != "yes" {
		t.Errorf("expected labels [no yes], got %v", got)
	}
}

func TestSchemaWithTarget(t *testing.T) {
	s := testSchema(t)
	reordered, err := s.WithTarget("temperature")
	if err != nil {
		t.Fatalf("expected reordering to succeed, got %v", err)
	}
	if got := reordered.Target().Name(); got != "temperature" {
		t.Errorf("expected target temperature, got %s", got)
	}
	if !reordered.IsRegression() {
		t.Error("expected a continuous target to make a regression schema")
	}
	if got := reordered.IndexOf("outlook"); got != 0 {
		t.Errorf("expected outlook to keep index 0, got %d", got)
	}
	if _, err = s.WithTarget("humidity"); err == nil {
		t.Error("expected an unknown target to be rejected")
	}
}

func TestSchemaRejectsDuplicateNames(t *testing.T) {
	_, err := NewSchema([]Feature{
		NewContinuousFeature("x"),
		NewContinuousFeature("x"),
	})
	if err == nil {
		t.Error("expected duplicate feature names to be rejected")
	}
}

func TestSchemaRejectsSingleFeature(t *testing.T) {
	_, err := NewSchema([]Feature{NewContinuousFeature("x")})
	if err == nil {
		t.Error("expected a schema without inputs to be rejected")
	}
}

func TestDiscreteFeatureValueMapping(t *testing.T) {
	f := NewDiscreteFeature("outlook", []string{"sunny", "overcast", "rainy"})
	if got := f.IndexOf("overcast"); got != 1 {
		t.Errorf("expected index 1, got %d", got)
	}
	if got := f.IndexOf("foggy"); got != -1 {
		t.Errorf("expected -1 for an unknown value, got %d", got)
	}
	v, err := f.ValueAt(2)
	if err != nil || v != "rainy" {
		t.Errorf("expected rainy, got %q (%v)", v, err)
	}
	if _, err = f.ValueAt(3); err == nil {
		t.Error("expected an out-of-range index to be rejected")
	}
}

func TestFeatureValidation(t *testing.T) {
	df := NewDiscreteFeature("outlook", []string{"sunny"})
	if ok, _ := df.Valid("sunny"); !ok {
		t.Error("expected an available value to be valid")
	}
	if ok, err := df.Valid("foggy"); ok || err == nil {
		t.Error("expected an unknown value to be invalid with an error")
	}
	if ok, err := df.Valid(1.0); ok || err == nil {
		t.Error("expected a numeric value to be invalid for a discrete feature")
	}
	cf := NewContinuousFeature("temperature")
	if ok, _ := cf.Valid(20.5); !ok {
		t.Error("expected a float64 to be valid")
	}
	if ok, err := cf.Valid("warm"); ok || err == nil {
		t.Error("expected a string value to be invalid for a continuous feature")
	}
}
