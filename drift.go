package sapling

// driftScan walks the internal nodes of the main tree at every drift
// check. A node holding alternate subtrees enters test mode; a node
// without them whose prequential error has risen beyond the configured
// threshold spawns one. Alternate subtrees are not scanned: they do not
// grow alternates of their own.
func (t *Tree) driftScan(n *node) {
	if n.isLeaf() {
		return
	}
	if n.testModeN == 0 {
		if n.err() > t.config.DriftErrorThreshold && len(n.altTrees) < t.config.MaxAltTrees {
			t.spawnAlt(n)
		}
		if len(n.altTrees) > 0 {
			t.enterTestMode(n)
		}
	}
	for _, c := range n.children {
		t.driftScan(c)
	}
}

// spawnAlt roots a fresh alternate leaf at a degraded node. The
// alternate shares the host's used-feature set, so it may retest the
// host's own split feature, but a feature already tested by a sibling
// alternate at the same host is banned from its splits: alternates
// competing at the same point must test different attributes.
func (t *Tree) spawnAlt(host *node) {
	used := make(map[int]bool, len(host.usedFeatures))
	for i := range host.usedFeatures {
		used[i] = true
	}
	alt := newLeaf(t.ids.nextLeafID(), used, len(t.schema.Labels()))
	host.altTrees = append(host.altTrees, alt)
	t.leaves[alt.id] = alt
	t.altSpawned++
}

// enterTestMode starts a self-evaluation period at a node: for the next
// WindowSize distinct examples reaching it, the node's subtree and each
// of its alternates classify independently and their prequential errors
// are measured fresh.
func (t *Tree) enterTestMode(n *node) {
	n.testModeN = t.config.WindowSize
	n.seen = make(map[uint64]bool)
	n.correct = 0
	n.all = 0
	n.errSum = 0.0
	n.errNorm = 0.0
	for _, alt := range n.altTrees {
		alt.errSum = 0.0
		alt.errNorm = 0.0
		alt.correct = 0
		alt.all = 0
	}
}

// selfEval records one test-mode observation at a node: the example is
// sacrificed into the node's seen set, the main subtree's loss was
// already folded into the node's error by the caller, and every
// alternate classifies the example independently. When the countdown
// runs out the test resolves, and the returned node, if not nil, is the
// alternate promoted into the host's place.
func (t *Tree) selfEval(v, parent *node, childIndex int, e *Example, loss float64) *node {
	h := e.hash()
	if v.seen[h] {
		return nil
	}
	v.seen[h] = true
	v.all++
	if loss == 0 {
		v.correct++
	}
	for _, alt := range v.altTrees {
		altLoss := 0.0
		if t.classifySubtree(alt, e) != e.Label {
			altLoss = 1.0
		}
		alt.updateErr(altLoss, t.config.FadingFactor)
		alt.all++
		if altLoss == 0 {
			alt.correct++
		}
	}
	if v.testModeN--; v.testModeN > 0 {
		return nil
	}
	return t.resolveTestMode(v, parent, childIndex)
}

// resolveTestMode compares a node's test-mode error against its best
// alternate's. When the alternate wins by more than the promotion
// margin it replaces the node in its parent (or becomes the root) and
// the incumbent subtree is discarded; otherwise all alternates are
// discarded and the node returns to normal mode.
func (t *Tree) resolveTestMode(v, parent *node, childIndex int) *node {
	var best *node
	for _, alt := range v.altTrees {
		if alt.errNorm == 0 {
			continue
		}
		if best == nil || alt.err() < best.err() {
			best = alt
		}
	}
	if best != nil && v.err()-best.err() > t.config.PromotionMargin {
		for _, alt := range v.altTrees {
			if alt != best {
				t.unregisterLeaves(alt)
				t.altDiscarded++
			}
		}
		v.altTrees = nil
		t.unregisterLeaves(v)
		best.resetEval()
		if parent == nil {
			t.root = best
		} else {
			parent.children[childIndex] = best
		}
		t.promotions++
		return best
	}
	for _, alt := range v.altTrees {
		t.unregisterLeaves(alt)
		t.altDiscarded++
	}
	v.altTrees = nil
	v.resetEval()
	return nil
}

// processAlt routes an example through one alternate subtree, updating
// the reached leaf exactly as on the main path. Splits inside an
// alternate may not test a feature another alternate of the same host
// already tests.
func (t *Tree) processAlt(host, altRoot *node, e *Example) error {
	n := altRoot
	for !n.isLeaf() {
		n = n.children[n.route(e)]
	}
	if err := t.updateLeafStats(n, e); err != nil {
		return err
	}
	return t.maybeSplit(n, t.altBannedFeatures(host, altRoot))
}

// altBannedFeatures collects the split features already tested by the
// other alternates rooted at the same host.
func (t *Tree) altBannedFeatures(host, current *node) map[int]bool {
	var banned map[int]bool
	for _, alt := range host.altTrees {
		if alt == current || alt.isLeaf() {
			continue
		}
		if banned == nil {
			banned = make(map[int]bool)
		}
		banned[alt.splitFeature] = true
	}
	return banned
}

// unregisterLeaves removes every leaf of a discarded subtree, alternate
// subtrees included, from the tree's leaf index, so that forgetting an
// example placed there becomes a no-op.
func (t *Tree) unregisterLeaves(n *node) {
	if n.isLeaf() {
		delete(t.leaves, n.id)
		return
	}
	for _, c := range n.children {
		t.unregisterLeaves(c)
	}
	for _, alt := range n.altTrees {
		t.unregisterLeaves(alt)
	}
}
