package sapling

import (
	"fmt"
	"math"

	"github.com/pbanos/sapling/feature"
)

/*
Tree is an incremental decision tree over a stream of examples
conforming to a schema. It owns the example window, the id generator
and the drift state; Process is its only mutator.
*/
type Tree struct {
	schema     *feature.Schema
	config     *Config
	root       *node
	leaves     map[int]*node
	window     *window
	ids        *idGenerator
	regression bool

	processedN    uint64
	driftN        int
	splits        int
	altSpawned    int
	promotions    int
	altDiscarded  int
	errSum        float64
	errNorm       float64
}

/*
Stats reports the counters a tree accumulates while processing its
stream.
*/
type Stats struct {
	// Examples is the number of examples processed so far.
	Examples uint64
	// Splits is the number of leaves turned into internal nodes.
	Splits int
	// AltTreesSpawned, Promotions and AltTreesDiscarded count the
	// lifecycle events of alternate subtrees.
	AltTreesSpawned   int
	Promotions        int
	AltTreesDiscarded int
	// PrequentialError is the tree's fading prequential error: the 0-1
	// loss for classification, the absolute error for regression.
	PrequentialError float64
	// WindowLen is the number of examples currently held in the
	// window.
	WindowLen int
}

/*
New takes a schema and a configuration and returns a tree able to learn
from examples conforming to the schema, or an error when the
configuration is invalid. A nil config means all defaults.
*/
func New(schema *feature.Schema, config *Config) (*Tree, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	t := &Tree{
		schema:     schema,
		config:     config,
		leaves:     make(map[int]*node),
		window:     newWindow(config.WindowSize),
		ids:        newIDGenerator(),
		regression: schema.IsRegression(),
	}
	t.root = newLeaf(t.ids.nextLeafID(), nil, len(schema.Labels()))
	t.leaves[t.root.id] = t.root
	return t, nil
}

// Schema returns the schema of the examples the tree learns from.
func (t *Tree) Schema() *feature.Schema {
	return t.schema
}

// Config returns the tree's learning parameters.
func (t *Tree) Config() *Config {
	return t.config
}

// Stats returns the tree's processing counters.
func (t *Tree) Stats() Stats {
	s := Stats{
		Examples:          t.processedN,
		Splits:            t.splits,
		AltTreesSpawned:   t.altSpawned,
		Promotions:        t.promotions,
		AltTreesDiscarded: t.altDiscarded,
		WindowLen:         t.window.len(),
	}
	if t.errNorm > 0 {
		s.PrequentialError = t.errSum / t.errNorm
	}
	return s
}

/*
LeafWeight takes a leaf id and returns the number of examples currently
accumulated at that leaf and a boolean indicating whether a leaf with
that id exists.
*/
func (t *Tree) LeafWeight(id int) (int, bool) {
	leaf, ok := t.leaves[id]
	if !ok {
		return 0, false
	}
	return leaf.examplesSeen, true
}

/*
Process takes an example, appends it to the window (forgetting the
example the window evicts, if any), routes it to a leaf of the main
tree and of every alternate subtree on its path, updates their
statistics and attempts the due split and drift decisions. It returns
a ValidationError when the example does not conform to the schema (in
which case the tree is unchanged) and a CorruptionError when an
internal invariant is found broken.
*/
func (t *Tree) Process(e *Example) error {
	if err := t.validateInputs(e); err != nil {
		return err
	}
	if err := t.validateTarget(e); err != nil {
		return err
	}
	t.processedN++
	e.seq = t.processedN

	var loss float64
	if t.regression {
		loss = math.Abs(t.predictSubtree(t.root, e) - e.Target)
	} else if t.classifySubtree(t.root, e) != e.Label {
		loss = 1.0
	}
	t.errSum = loss + t.config.FadingFactor*t.errSum
	t.errNorm = 1 + t.config.FadingFactor*t.errNorm

	if evicted := t.window.push(e); evicted != nil {
		if err := t.forget(evicted); err != nil {
			return err
		}
	}

	adaptive := !t.regression && t.config.adaptive()
	n := t.root
	var parent *node
	childIndex := -1
	for !n.isLeaf() {
		if adaptive {
			n.updateErr(loss, t.config.FadingFactor)
			if n.testModeN > 0 {
				if promoted := t.selfEval(n, parent, childIndex, e, loss); promoted != nil {
					n = promoted
					continue
				}
			}
			for _, alt := range n.altTrees {
				if err := t.processAlt(n, alt, e); err != nil {
					return err
				}
			}
		}
		parent, childIndex = n, n.route(e)
		n = n.children[childIndex]
	}
	if err := t.updateLeafStats(n, e); err != nil {
		return err
	}
	if err := t.maybeSplit(n, nil); err != nil {
		return err
	}

	if adaptive {
		if t.driftN++; t.driftN >= t.config.DriftCheck {
			t.driftN = 0
			t.driftScan(t.root)
		}
	}
	return nil
}

/*
ProcessLine takes a delimited text line and a delimiter, parses an
example from it according to the tree's schema and processes it.
*/
func (t *Tree) ProcessLine(line string, delimiter rune) error {
	e, err := ParseLine(t.schema, line, delimiter)
	if err != nil {
		return err
	}
	return t.Process(e)
}

/*
Classify takes an example and returns the index of the label the tree
predicts for it, or an error when the example's inputs do not conform
to the schema. An untrained tree predicts the first label.
*/
func (t *Tree) Classify(e *Example) (int, error) {
	if t.regression {
		return 0, fmt.Errorf("tree predicts a continuous target, use PredictValue")
	}
	if err := t.validateInputs(e); err != nil {
		return 0, err
	}
	return t.classifySubtree(t.root, e), nil
}

/*
Predict takes an example and returns the label the tree predicts for it
as a value of the target feature, or an error when the tree is a
regression tree or the example's inputs do not conform to the schema.
*/
func (t *Tree) Predict(e *Example) (string, error) {
	label, err := t.Classify(e)
	if err != nil {
		return "", err
	}
	target := t.schema.Target().(*feature.DiscreteFeature)
	return target.ValueAt(label)
}

/*
PredictValue takes an example and returns the value the tree predicts
for it, or an error when the tree is a classification tree or the
example's inputs do not conform to the schema. An untrained tree
predicts 0.
*/
func (t *Tree) PredictValue(e *Example) (float64, error) {
	if !t.regression {
		return 0, fmt.Errorf("tree predicts a discrete target, use Predict")
	}
	if err := t.validateInputs(e); err != nil {
		return 0, err
	}
	return t.predictSubtree(t.root, e), nil
}

func (t *Tree) classifySubtree(n *node, e *Example) int {
	for !n.isLeaf() {
		n = n.children[n.route(e)]
	}
	if t.config.LeafPrediction == NaiveBayes {
		return n.naiveBayes(e, t.schema)
	}
	return n.majority()
}

func (t *Tree) predictSubtree(n *node, e *Example) float64 {
	for !n.isLeaf() {
		n = n.children[n.route(e)]
	}
	return n.mean()
}

func (t *Tree) validateInputs(e *Example) error {
	inputs := t.schema.Inputs()
	if len(e.Values) != len(inputs) {
		return ValidationError(fmt.Sprintf("example has %d values, schema expects %d inputs", len(e.Values), len(inputs)))
	}
	for i, f := range inputs {
		v := e.Values[i]
		switch f := f.(type) {
		case *feature.DiscreteFeature:
			if v.Index < 0 || v.Index >= len(f.AvailableValues()) {
				return ValidationError(fmt.Sprintf("example value %d for discrete feature %s is out of range", v.Index, f.Name()))
			}
		case *feature.ContinuousFeature:
			if v.Index >= 0 {
				return ValidationError(fmt.Sprintf("example has a discrete value for continuous feature %s", f.Name()))
			}
			if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
				return ValidationError(fmt.Sprintf("example value for continuous feature %s is not a finite number", f.Name()))
			}
		}
	}
	return nil
}

func (t *Tree) validateTarget(e *Example) error {
	if t.regression {
		if math.IsNaN(e.Target) || math.IsInf(e.Target, 0) {
			return ValidationError("example target is not a finite number")
		}
		return nil
	}
	if e.Label < 0 || e.Label >= len(t.schema.Labels()) {
		return ValidationError(fmt.Sprintf("example label %d is out of range", e.Label))
	}
	return nil
}

// updateLeafStats folds an example into a leaf's sufficient statistics
// and records the placement on the example for later forgetting.
func (t *Tree) updateLeafStats(leaf *node, e *Example) error {
	leaf.examplesSeen++
	var binIDs map[int]int
	record := func(featureIndex, binID int) {
		if binIDs == nil {
			binIDs = make(map[int]int)
		}
		binIDs[featureIndex] = binID
	}
	if t.regression {
		leaf.target.add(e.Target)
		for i, v := range e.Values {
			if v.Index >= 0 {
				w := leaf.regCounts[regKey{i, v.Index}]
				if w == nil {
					w = &welfordStat{}
					leaf.regCounts[regKey{i, v.Index}] = w
				}
				w.add(e.Target)
			} else {
				record(i, t.histogramFor(leaf, i).insertValue(v.Num, e.Target, t.ids))
			}
		}
	} else {
		leaf.labelCounts[e.Label]++
		for i, v := range e.Values {
			if v.Index >= 0 {
				leaf.counts[countKey{i, v.Index, e.Label}]++
			} else {
				record(i, t.histogramFor(leaf, i).insertLabeled(v.Num, e.Label, t.ids))
			}
		}
	}
	e.place(leaf.id, binIDs)
	return nil
}

func (t *Tree) histogramFor(leaf *node, featureIndex int) *histogram {
	if leaf.histograms == nil {
		leaf.histograms = make(map[int]*histogram)
	}
	h := leaf.histograms[featureIndex]
	if h == nil {
		h = newHistogram(t.config.BinsCap, len(t.schema.Labels()))
		leaf.histograms[featureIndex] = h
	}
	return h
}

// forget reverses the statistics an evicted example contributed to the
// leaves that accumulated it. A placement whose leaf no longer exists
// (it was split or its subtree discarded since) is silently absorbed:
// the statistic is logically consumed.
func (t *Tree) forget(e *Example) error {
	for _, p := range e.placements {
		leaf, ok := t.leaves[p.leafID]
		if !ok || !leaf.isLeaf() {
			continue
		}
		if err := t.removeFromLeaf(leaf, e, p); err != nil {
			return err
		}
	}
	e.placements = nil
	return nil
}

func (t *Tree) removeFromLeaf(leaf *node, e *Example, p placement) error {
	if leaf.examplesSeen == 0 {
		return CorruptionError(fmt.Sprintf("forgetting an example would make leaf %d's weight negative", leaf.id))
	}
	leaf.examplesSeen--
	if t.regression {
		leaf.target.remove(e.Target)
		for i, v := range e.Values {
			if v.Index >= 0 {
				w := leaf.regCounts[regKey{i, v.Index}]
				if w == nil || w.count == 0 {
					return CorruptionError(fmt.Sprintf("leaf %d has no statistics for feature %d value %d to forget", leaf.id, i, v.Index))
				}
				w.remove(e.Target)
			} else {
				h := leaf.histograms[i]
				if h == nil {
					return CorruptionError(fmt.Sprintf("leaf %d has no histogram for feature %d to forget from", leaf.id, i))
				}
				if err := h.removeValue(p.binIDs[i], e.Target); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if leaf.labelCounts[e.Label] == 0 {
		return CorruptionError(fmt.Sprintf("forgetting an example would make leaf %d's count for label %d negative", leaf.id, e.Label))
	}
	leaf.labelCounts[e.Label]--
	for i, v := range e.Values {
		if v.Index >= 0 {
			key := countKey{i, v.Index, e.Label}
			c := leaf.counts[key]
			if c == 0 {
				return CorruptionError(fmt.Sprintf("leaf %d has no count for feature %d value %d label %d to forget", leaf.id, i, v.Index, e.Label))
			}
			if c == 1 {
				delete(leaf.counts, key)
			} else {
				leaf.counts[key] = c - 1
			}
		} else {
			h := leaf.histograms[i]
			if h == nil {
				return CorruptionError(fmt.Sprintf("leaf %d has no histogram for feature %d to forget from", leaf.id, i))
			}
			if err := h.removeLabeled(p.binIDs[i], e.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

// maybeSplit evaluates the due split decision at a leaf: every time the
// leaf's weight reaches a positive multiple of the grace period, the
// two best candidates are compared under the Hoeffding bound, and the
// leaf splits when the best one either dominates the runner-up by more
// than the bound or the bound has shrunk below the tie-breaking
// threshold.
func (t *Tree) maybeSplit(leaf *node, banned map[int]bool) error {
	if leaf.examplesSeen == 0 || leaf.examplesSeen%t.config.GracePeriod != 0 {
		return nil
	}
	best, runnerUp := leaf.bestSplit(t.schema, t.config.Heuristic, banned)
	if best.feature < 0 || best.gain <= 0 {
		return nil
	}
	r := leaf.heuristicRange(t.schema, t.config.Heuristic)
	if r <= 0 {
		return nil
	}
	epsilon := HoeffdingBound(r, leaf.examplesSeen, t.config.SplitConfidence)
	if best.gain-runnerUp.gain > epsilon || epsilon < t.config.TieBreaking {
		t.splitLeaf(leaf, best)
	}
	return nil
}

// splitLeaf turns a leaf into an internal node testing the candidate's
// feature, with one fresh child leaf per outcome. Discrete features are
// consumed on the path below; continuous features stay available for
// retesting at finer thresholds.
func (t *Tree) splitLeaf(leaf *node, c splitCandidate) {
	f := t.schema.Inputs()[c.feature]
	used := make(map[int]bool, len(leaf.usedFeatures)+1)
	for i := range leaf.usedFeatures {
		used[i] = true
	}
	outcomes := 2
	if df, ok := f.(*feature.DiscreteFeature); ok {
		used[c.feature] = true
		outcomes = len(df.AvailableValues())
	}
	labels := len(t.schema.Labels())
	children := make([]*node, outcomes)
	for i := range children {
		child := newLeaf(t.ids.nextLeafID(), used, labels)
		children[i] = child
		t.leaves[child.id] = child
	}
	delete(t.leaves, leaf.id)
	leaf.clr()
	leaf.kind = internalKind
	leaf.splitFeature = c.feature
	leaf.splitValue = c.threshold
	leaf.children = children
	t.splits++
}
