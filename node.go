package sapling

import (
	"math"

	"github.com/pbanos/sapling/feature"
)

type nodeKind int

const (
	leafKind nodeKind = iota
	internalKind
)

// countKey indexes the discrete sufficient statistics of a
// classification leaf: examples with the value-th value of the
// feature-th input feature and the given label.
type countKey struct {
	feature int
	value   int
	label   int
}

// regKey indexes the discrete sufficient statistics of a regression
// leaf: target aggregates of the examples with the value-th value of
// the feature-th input feature.
type regKey struct {
	feature int
	value   int
}

/*
node is a tree node, leaf or internal. A leaf accumulates sufficient
statistics; a split mutates it in place into an internal node with
fresh child leaves, so that references to it (its parent's child slot,
or the alternate-subtree list of its host) stay valid.
*/
type node struct {
	id           int
	kind         nodeKind
	usedFeatures map[int]bool

	// leaf statistics
	examplesSeen int
	labelCounts  []int
	target       welfordStat
	counts       map[countKey]int
	regCounts    map[regKey]*welfordStat
	histograms   map[int]*histogram

	// internal-node test
	splitFeature int
	splitValue   float64
	children     []*node

	// drift adaptation
	altTrees  []*node
	testModeN int
	seen      map[uint64]bool
	correct   int
	all       int
	errSum    float64
	errNorm   float64
}

func newLeaf(id int, usedFeatures map[int]bool, labels int) *node {
	n := &node{
		id:           id,
		kind:         leafKind,
		usedFeatures: usedFeatures,
		splitFeature: -1,
	}
	if labels > 0 {
		n.labelCounts = make([]int, labels)
		n.counts = make(map[countKey]int)
	} else {
		n.regCounts = make(map[regKey]*welfordStat)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.kind == leafKind
}

// route returns the index of the child the example descends into.
func (n *node) route(e *Example) int {
	v := e.Values[n.splitFeature]
	if v.Index >= 0 {
		return v.Index
	}
	if v.Num <= n.splitValue {
		return 0
	}
	return 1
}

// updateErr folds a loss into the node's prequential error with the
// given fading factor.
func (n *node) updateErr(loss, fading float64) {
	n.errSum = loss + fading*n.errSum
	n.errNorm = 1 + fading*n.errNorm
}

// err returns the node's current prequential error, or 0 before any
// observation.
func (n *node) err() float64 {
	if n.errNorm == 0 {
		return 0.0
	}
	return n.errSum / n.errNorm
}

func (n *node) resetEval() {
	n.testModeN = 0
	n.seen = nil
	n.correct = 0
	n.all = 0
	n.errSum = 0.0
	n.errNorm = 0.0
}

// clr discards the node's accumulated statistics, keeping only its
// structural fields.
func (n *node) clr() {
	n.examplesSeen = 0
	n.labelCounts = nil
	n.target = welfordStat{}
	n.counts = nil
	n.regCounts = nil
	n.histograms = nil
	n.seen = nil
}

// majority returns the index of the most frequent label at the leaf,
// lowest index on ties, 0 when the leaf has seen nothing.
func (n *node) majority() int {
	best := 0
	for i, c := range n.labelCounts {
		if c > n.labelCounts[best] {
			best = i
		}
	}
	return best
}

// naiveBayes returns the label maximizing the naive-Bayes posterior of
// the example under the leaf's discrete sufficient statistics, with
// Laplace-smoothed probabilities combined in log space. Continuous
// features do not contribute. It falls back to the majority when the
// leaf has seen nothing.
func (n *node) naiveBayes(e *Example, schema *feature.Schema) int {
	if n.examplesSeen == 0 {
		return n.majority()
	}
	labels := len(n.labelCounts)
	best := 0
	bestLogP := math.Inf(-1)
	for label := 0; label < labels; label++ {
		logP := math.Log(LaplaceEstimate(n.labelCounts[label], n.examplesSeen, labels))
		for i, f := range schema.Inputs() {
			df, ok := f.(*feature.DiscreteFeature)
			if !ok {
				continue
			}
			r := n.counts[countKey{i, e.Values[i].Index, label}]
			logP += math.Log(LaplaceEstimate(r, n.labelCounts[label], len(df.AvailableValues())))
		}
		if logP > bestLogP {
			bestLogP = logP
			best = label
		}
	}
	return best
}

// mean returns the leaf's regression prediction, 0 when the leaf has
// seen nothing.
func (n *node) mean() float64 {
	return n.target.mean
}

// splitCandidate is one entry of a leaf's split ranking: an input
// feature with the gain of its best split, and, for continuous
// features, the threshold achieving it. The index -1 identifies the
// null candidate that stands for not splitting at all.
type splitCandidate struct {
	feature   int
	gain      float64
	threshold float64
}

func nullCandidate() splitCandidate {
	return splitCandidate{feature: -1}
}

// bestSplit ranks the leaf's split candidates under the given heuristic
// and returns the two best ones. Features in usedFeatures or in the
// banned set are not considered. The null candidate participates, so
// that when no feature achieves positive gain the best candidate is to
// not split.
func (n *node) bestSplit(schema *feature.Schema, heuristic Heuristic, banned map[int]bool) (splitCandidate, splitCandidate) {
	best, runnerUp := nullCandidate(), nullCandidate()
	regression := schema.IsRegression()
	for i, f := range schema.Inputs() {
		if n.usedFeatures[i] || banned[i] {
			continue
		}
		var c splitCandidate
		switch f := f.(type) {
		case *feature.DiscreteFeature:
			if regression {
				c = splitCandidate{feature: i, gain: n.discreteStdGain(f, i)}
			} else {
				c = splitCandidate{feature: i, gain: n.discreteClassGain(f, i, heuristic)}
			}
		case *feature.ContinuousFeature:
			h := n.histograms[i]
			if h == nil {
				continue
			}
			var gain, threshold float64
			if regression {
				gain, threshold = h.stdGain()
			} else if heuristic == GiniGain {
				gain, threshold = h.giniGain()
			} else {
				gain, threshold = h.infoGain()
			}
			c = splitCandidate{feature: i, gain: gain, threshold: threshold}
		default:
			continue
		}
		if c.gain > best.gain {
			best, runnerUp = c, best
		} else if c.gain > runnerUp.gain {
			runnerUp = c
		}
	}
	return best, runnerUp
}

// discreteClassGain computes the impurity reduction of splitting the
// leaf on every value of a discrete feature, from the leaf's discrete
// sufficient statistics.
func (n *node) discreteClassGain(f *feature.DiscreteFeature, index int, heuristic Heuristic) float64 {
	impurity := entropyOf
	if heuristic == GiniGain {
		impurity = giniOf
	}
	if n.examplesSeen == 0 {
		return 0.0
	}
	before := impurity(n.labelCounts, n.examplesSeen)
	after := 0.0
	labels := len(n.labelCounts)
	perValue := make([]int, labels)
	for v := range f.AvailableValues() {
		var nv int
		for label := 0; label < labels; label++ {
			c := n.counts[countKey{index, v, label}]
			perValue[label] = c
			nv += c
		}
		if nv == 0 {
			continue
		}
		after += impurity(perValue, nv) * float64(nv) / float64(n.examplesSeen)
	}
	return before - after
}

// discreteStdGain computes the standard-deviation reduction of
// splitting the leaf on every value of a discrete feature.
func (n *node) discreteStdGain(f *feature.DiscreteFeature, index int) float64 {
	if n.examplesSeen == 0 {
		return 0.0
	}
	before := n.target.stdDev()
	after := 0.0
	for v := range f.AvailableValues() {
		w := n.regCounts[regKey{index, v}]
		if w == nil || w.count == 0 {
			continue
		}
		after += w.stdDev() * float64(w.count) / float64(n.examplesSeen)
	}
	return before - after
}

// heuristicRange returns the range R of the split heuristic at the
// leaf, as used by the Hoeffding bound: log2 of the number of labels
// for information gain, 1 for Gini gain and the variance of the target
// for standard-deviation reduction.
func (n *node) heuristicRange(schema *feature.Schema, heuristic Heuristic) float64 {
	if schema.IsRegression() {
		return n.target.variance()
	}
	if heuristic == GiniGain {
		return 1.0
	}
	return math.Log2(float64(len(schema.Labels())))
}
