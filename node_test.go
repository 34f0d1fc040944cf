package sapling

import (
	"math/rand"
	"testing"

	"github.com/pbanos/sapling/feature"
)

func binarySchema(t *testing.T, inputs int) *feature.Schema {
	t.Helper()
	features := make([]feature.Feature, 0, inputs+1)
	names := []string{"a", "b", "c", "d"}
	for i := 0; i < inputs; i++ {
		features = append(features, feature.NewDiscreteFeature(names[i], []string{"f", "t"}))
	}
	features = append(features, feature.NewDiscreteFeature("label", []string{"f", "t"}))
	schema, err := feature.NewSchema(features)
	if err != nil {
		t.Fatalf("expected schema to build, got %v", err)
	}
	return schema
}

func TestLeafLabelCountsMatchExamplesSeen(t *testing.T) {
	schema := binarySchema(t, 2)
	tree, err := New(schema, &Config{WindowSize: 40, GracePeriod: 100000})
	if err != nil {
		t.Fatalf("expected tree to build, got %v", err)
	}
	r := rand.New(rand.NewSource(31))
	for i := 0; i < 200; i++ {
		a, b := r.Intn(2), r.Intn(2)
		e := NewExample([]Value{DiscreteValue(a), DiscreteValue(b)}, a^b)
		if err := tree.Process(e); err != nil {
			t.Fatalf("expected example %d to process, got %v", i, err)
		}
		for id, leaf := range tree.leaves {
			var labelTotal int
			for _, c := range leaf.labelCounts {
				if c < 0 {
					t.Fatalf("expected non-negative label counts at leaf %d, got %v", id, leaf.labelCounts)
				}
				labelTotal += c
			}
			if labelTotal != leaf.examplesSeen {
				t.Fatalf("expected label counts at leaf %d to sum to its weight %d, got %d", id, leaf.examplesSeen, labelTotal)
			}
		}
	}
}

func TestBestSplitSkipsUsedFeatures(t *testing.T) {
	schema := binarySchema(t, 2)
	leaf := newLeaf(1, map[int]bool{0: true}, 2)
	r := rand.New(rand.NewSource(37))
	for i := 0; i < 400; i++ {
		a := r.Intn(2)
		leaf.examplesSeen++
		leaf.labelCounts[a]++
		leaf.counts[countKey{0, a, a}]++
		leaf.counts[countKey{1, r.Intn(2), a}]++
	}
	best, _ := leaf.bestSplit(schema, InfoGain, nil)
	if best.feature == 0 {
		t.Error("expected a used feature to never be selected as best split")
	}
}

func TestBestSplitPrefersLowestIndexOnTies(t *testing.T) {
	schema := binarySchema(t, 2)
	leaf := newLeaf(1, nil, 2)
	// both features copy the label, so their gains are identical
	for i := 0; i < 100; i++ {
		label := i % 2
		leaf.examplesSeen++
		leaf.labelCounts[label]++
		leaf.counts[countKey{0, label, label}]++
		leaf.counts[countKey{1, label, label}]++
	}
	best, runnerUp := leaf.bestSplit(schema, InfoGain, nil)
	if best.feature != 0 {
		t.Errorf("expected the tie to break on the lowest feature index, got %d", best.feature)
	}
	if runnerUp.feature != 1 {
		t.Errorf("expected the runner-up to be the other feature, got %d", runnerUp.feature)
	}
	if best.gain != runnerUp.gain {
		t.Errorf("expected identical gains, got %v and %v", best.gain, runnerUp.gain)
	}
}

func TestBestSplitWithNoPositiveGainIsNull(t *testing.T) {
	schema := binarySchema(t, 1)
	leaf := newLeaf(1, nil, 2)
	// a pure leaf: no split has any gain
	for i := 0; i < 100; i++ {
		leaf.examplesSeen++
		leaf.labelCounts[0]++
		leaf.counts[countKey{0, i % 2, 0}]++
	}
	best, _ := leaf.bestSplit(schema, InfoGain, nil)
	if best.feature >= 0 && best.gain > 0 {
		t.Errorf("expected no candidate with positive gain on a pure leaf, got feature %d with gain %v", best.feature, best.gain)
	}
}

func TestNaiveBayesPrediction(t *testing.T) {
	schema := binarySchema(t, 2)
	leaf := newLeaf(1, nil, 2)
	// feature a matches the label on 90 of 100 examples, feature b is
	// uninformative
	for i := 0; i < 100; i++ {
		label := i % 2
		a := label
		if i < 10 {
			a = 1 - label
		}
		leaf.examplesSeen++
		leaf.labelCounts[label]++
		leaf.counts[countKey{0, a, label}]++
		leaf.counts[countKey{1, (i / 2) % 2, label}]++
	}
	e := NewExample([]Value{DiscreteValue(1), DiscreteValue(0)}, -1)
	if got := leaf.naiveBayes(e, schema); got != 1 {
		t.Errorf("expected naive bayes to predict label 1, got %d", got)
	}
	e = NewExample([]Value{DiscreteValue(0), DiscreteValue(0)}, -1)
	if got := leaf.naiveBayes(e, schema); got != 0 {
		t.Errorf("expected naive bayes to predict label 0, got %d", got)
	}
}

func TestMajorityOnEmptyLeaf(t *testing.T) {
	leaf := newLeaf(1, nil, 3)
	if got := leaf.majority(); got != 0 {
		t.Errorf("expected an untrained leaf to default to the first label, got %d", got)
	}
}

func TestPrequentialErrMatchesClosedForm(t *testing.T) {
	n := newLeaf(1, nil, 2)
	losses := []float64{1, 0, 1, 1, 0, 0, 0, 1, 0, 0}
	const phi = 0.9
	for _, l := range losses {
		n.updateErr(l, phi)
	}
	var num, den float64
	k := len(losses)
	for i, l := range losses {
		w := 1.0
		for j := 0; j < k-i-1; j++ {
			w *= phi
		}
		num += w * l
		den += w
	}
	expected := num / den
	if diff := n.err() - expected; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected prequential error %v, got %v", expected, n.err())
	}
}
