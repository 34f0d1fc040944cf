package export

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
)

func grownTree(t *testing.T) *sapling.Tree {
	t.Helper()
	schema, err := feature.NewSchema([]feature.Feature{
		feature.NewDiscreteFeature("outlook", []string{"sunny", "overcast", "rainy"}),
		feature.NewContinuousFeature("temperature"),
		feature.NewDiscreteFeature("play", []string{"no", "yes"}),
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
	r := rand.New(rand.NewSource(79))
	for i := 0; i < 1000; i++ {
		outlook := r.Intn(3)
		label := 1
		if outlook == 0 {
			label = 0
		}
		e := sapling.NewExample(
			[]sapling.Value{sapling.DiscreteValue(outlook), sapling.ContinuousValue(60 + 30*r.Float64())}, label)
		if err := tree.Process(e); err != nil {
			t.Fatalf("expected example %d to process, got %v", i, err)
		}
	}
	return tree
}

func TestWriteDOT(t *testing.T) {
	tree := grownTree(t)
	var buf bytes.Buffer
	if err := WriteDOT(tree, &buf); err != nil {
		t.Fatalf("expected DOT export to succeed, got %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph sapling {") {
		t.Errorf("expected a digraph document, got %q", out[:20])
	}
	if !strings.Contains(out, `label="outlook"`) {
		t.Error("expected the root node to be labelled with its split feature")
	}
	if !strings.Contains(out, `label="sunny"`) {
		t.Error("expected branches to be labelled with their values")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "}") {
		t.Error("expected the digraph to be closed")
	}
}

func TestWriteJSON(t *testing.T) {
	tree := grownTree(t)
	var buf bytes.Buffer
	if err := WriteJSON(tree, &buf); err != nil {
		t.Fatalf("expected JSON export to succeed, got %v", err)
	}
	doc := struct {
		Feature  string `json:"feature"`
		Children []struct {
			Branch     string `json:"branch"`
			Prediction string `json:"prediction"`
		} `json:"children"`
	}{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected the export to be valid JSON, got %v", err)
	}
	if doc.Feature != "outlook" {
		t.Errorf("expected the root to test outlook, got %q", doc.Feature)
	}
	if len(doc.Children) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(doc.Children))
	}
	if doc.Children[0].Branch != "sunny" || doc.Children[0].Prediction != "no" {
		t.Errorf("expected the sunny branch to predict no, got %q predicting %q", doc.Children[0].Branch, doc.Children[0].Prediction)
	}
}

func TestWriteXML(t *testing.T) {
	tree := grownTree(t)
	var buf bytes.Buffer
	if err := WriteXML(tree, &buf); err != nil {
		t.Fatalf("expected XML export to succeed, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `feature="outlook"`) {
		t.Error("expected the root element to carry its split feature")
	}
	if !strings.Contains(out, `branch="overcast"`) {
		t.Error("expected child elements to carry their branch values")
	}
}
