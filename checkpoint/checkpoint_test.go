package checkpoint

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
)

type memStore map[string][]byte

func (ms memStore) Save(ctx context.Context, name string, data []byte) error {
	ms[name] = data
	return nil
}

func (ms memStore) Load(ctx context.Context, name string) ([]byte, error) {
	return ms[name], nil
}

func (ms memStore) Delete(ctx context.Context, name string) error {
	delete(ms, name)
	return nil
}

func grownTree(t *testing.T) *sapling.Tree {
	t.Helper()
	schema, err := feature.NewSchema([]feature.Feature{
		feature.NewDiscreteFeature("a", []string{"f", "t"}),
		feature.NewDiscreteFeature("b", []string{"f", "t"}),
		feature.NewDiscreteFeature("label", []string{"f", "t"}),
	})
	if err != nil {
		t.Fatalf("expected schema to build, got %v", err)
	}
	adaptive := false
	tree, err := sapling.New(schema, &sapling.Config{
		GracePeriod: 50,
		WindowSize:  5000,
		Adaptive:    &adaptive,
	})
	if err != nil {
		t.Fatalf("expected tree to build, got %v", err)
	}
	r := rand.New(rand.NewSource(73))
	for i := 0; i < 2000; i++ {
		a, b := r.Intn(2), r.Intn(2)
		e := sapling.NewExample([]sapling.Value{sapling.DiscreteValue(a), sapling.DiscreteValue(b)}, a)
		if err := tree.Process(e); err != nil {
			t.Fatalf("expected example %d to process, got %v", i, err)
		}
	}
	return tree
}

func TestMarshalUnmarshalPreservesPredictions(t *testing.T) {
	tree := grownTree(t)
	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("expected checkpoint to marshal, got %v", err)
	}
	restored, err := Unmarshal(data, nil)
	if err != nil {
		t.Fatalf("expected checkpoint to unmarshal, got %v", err)
	}
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			e := sapling.NewExample([]sapling.Value{sapling.DiscreteValue(a), sapling.DiscreteValue(b)}, -1)
			expected, err := tree.Predict(e)
			if err != nil {
				t.Fatalf("expected the original tree to predict, got %v", err)
			}
			got, err := restored.Predict(e)
			if err != nil {
				t.Fatalf("expected the restored tree to predict, got %v", err)
			}
			if got != expected {
				t.Errorf("expected the restored tree to predict %q for (%d,%d), got %q", expected, a, b, got)
			}
		}
	}
}

func TestRestoredTreeKeepsLearning(t *testing.T) {
	tree := grownTree(t)
	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("expected checkpoint to marshal, got %v", err)
	}
	restored, err := Unmarshal(data, nil)
	if err != nil {
		t.Fatalf("expected checkpoint to unmarshal, got %v", err)
	}
	e := sapling.NewExample([]sapling.Value{sapling.DiscreteValue(0), sapling.DiscreteValue(0)}, 0)
	if err := restored.Process(e); err != nil {
		t.Errorf("expected the restored tree to keep processing examples, got %v", err)
	}
}

func TestSaveAndLoadTreeThroughStore(t *testing.T) {
	tree := grownTree(t)
	store := memStore{}
	ctx := context.Background()
	if err := SaveTree(ctx, store, "weather", tree); err != nil {
		t.Fatalf("expected the tree to save, got %v", err)
	}
	restored, err := LoadTree(ctx, store, "weather", nil)
	if err != nil {
		t.Fatalf("expected the tree to load, got %v", err)
	}
	if restored == nil {
		t.Fatal("expected a tree to be restored")
	}
	missing, err := LoadTree(ctx, store, "unknown", nil)
	if err != nil {
		t.Fatalf("expected loading a missing checkpoint to return no error, got %v", err)
	}
	if missing != nil {
		t.Error("expected no tree for a missing checkpoint")
	}
}
