package sapling

import (
	"fmt"

	"github.com/pbanos/sapling/feature"
)

/*
SnapshotNode is the portable form of a tree node: its structure, the
per-label or target statistics its predictions are made from, and its
alternate subtrees. Histograms, discrete sufficient statistics and the
example window are not captured: with majority leaf prediction a
restored tree predicts exactly as the captured one did, while
naive-Bayes leaves restart from empty discrete counts and may predict
differently. A restored tree keeps learning from fresh statistics.
*/
type SnapshotNode struct {
	ID           int
	SplitFeature int
	SplitValue   float64
	UsedFeatures []int
	ExamplesSeen int
	LabelCounts  []int
	TargetCount  int
	TargetMean   float64
	TargetVarSum float64
	TargetSum    float64
	Children     []*SnapshotNode
	AltTrees     []*SnapshotNode
}

/*
Snapshot is the portable form of a whole tree, as captured by the
Snapshot method and restored by NewFromSnapshot.
*/
type Snapshot struct {
	Root       *SnapshotNode
	NextLeafID int
	NextBinID  int
}

// Leaf returns whether the node is a leaf.
func (sn *SnapshotNode) Leaf() bool {
	return sn.SplitFeature < 0
}

/*
Snapshot captures the tree's current structure and leaf predictions.
*/
func (t *Tree) Snapshot() *Snapshot {
	return &Snapshot{
		Root:       snapshotNode(t.root),
		NextLeafID: t.ids.nextLeaf,
		NextBinID:  t.ids.nextBin,
	}
}

func snapshotNode(n *node) *SnapshotNode {
	sn := &SnapshotNode{
		ID:           n.id,
		SplitFeature: n.splitFeature,
		SplitValue:   n.splitValue,
		ExamplesSeen: n.examplesSeen,
		TargetCount:  n.target.count,
		TargetMean:   n.target.mean,
		TargetVarSum: n.target.varSum,
		TargetSum:    n.target.sum,
	}
	for i := range n.usedFeatures {
		sn.UsedFeatures = append(sn.UsedFeatures, i)
	}
	if n.labelCounts != nil {
		sn.LabelCounts = make([]int, len(n.labelCounts))
		copy(sn.LabelCounts, n.labelCounts)
	}
	for _, c := range n.children {
		sn.Children = append(sn.Children, snapshotNode(c))
	}
	for _, alt := range n.altTrees {
		sn.AltTrees = append(sn.AltTrees, snapshotNode(alt))
	}
	return sn
}

/*
NewFromSnapshot takes a schema, a configuration and a snapshot captured
from a tree over the same schema, and returns a tree restored from it,
or an error when the snapshot is inconsistent with the schema or the
configuration is invalid. With majority leaf prediction the restored
tree predicts as the captured one did; its window starts empty.
*/
func NewFromSnapshot(schema *feature.Schema, config *Config, snap *Snapshot) (*Tree, error) {
	t, err := New(schema, config)
	if err != nil {
		return nil, err
	}
	root, err := t.restoreNode(snap.Root)
	if err != nil {
		return nil, err
	}
	delete(t.leaves, t.root.id)
	t.root = root
	if snap.NextLeafID > t.ids.nextLeaf {
		t.ids.nextLeaf = snap.NextLeafID
	}
	if snap.NextBinID > t.ids.nextBin {
		t.ids.nextBin = snap.NextBinID
	}
	return t, nil
}

func (t *Tree) restoreNode(sn *SnapshotNode) (*node, error) {
	used := make(map[int]bool, len(sn.UsedFeatures))
	for _, i := range sn.UsedFeatures {
		if i < 0 || i >= len(t.schema.Inputs()) {
			return nil, fmt.Errorf("restoring node %d: used feature %d is out of schema range", sn.ID, i)
		}
		used[i] = true
	}
	labels := len(t.schema.Labels())
	n := newLeaf(sn.ID, used, labels)
	n.examplesSeen = sn.ExamplesSeen
	if labels > 0 {
		if sn.LabelCounts != nil && len(sn.LabelCounts) != labels {
			return nil, fmt.Errorf("restoring node %d: %d label counts for %d labels", sn.ID, len(sn.LabelCounts), labels)
		}
		copy(n.labelCounts, sn.LabelCounts)
	} else {
		n.target = welfordStat{
			count:  sn.TargetCount,
			mean:   sn.TargetMean,
			varSum: sn.TargetVarSum,
			sum:    sn.TargetSum,
		}
	}
	if sn.Leaf() {
		if len(sn.Children) > 0 {
			return nil, fmt.Errorf("restoring node %d: leaf with children", sn.ID)
		}
		t.leaves[n.id] = n
		return n, nil
	}
	if sn.SplitFeature >= len(t.schema.Inputs()) {
		return nil, fmt.Errorf("restoring node %d: split feature %d is out of schema range", sn.ID, sn.SplitFeature)
	}
	if len(sn.Children) < 2 {
		return nil, fmt.Errorf("restoring node %d: internal node with %d children", sn.ID, len(sn.Children))
	}
	n.clr()
	n.kind = internalKind
	n.splitFeature = sn.SplitFeature
	n.splitValue = sn.SplitValue
	for _, sc := range sn.Children {
		c, err := t.restoreNode(sc)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, c)
	}
	for _, sa := range sn.AltTrees {
		alt, err := t.restoreNode(sa)
		if err != nil {
			return nil, err
		}
		n.altTrees = append(n.altTrees, alt)
	}
	return n, nil
}
