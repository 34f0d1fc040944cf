/*
Package sapling implements an incremental decision-tree learner for
unbounded data streams, supporting classification and regression with
online adaptation to concept drift.

Examples are processed one at a time: each is routed through the tree to
a leaf, used to update the sufficient statistics kept there, and, when
the Hoeffding bound provides enough statistical evidence, triggers a
split that turns the leaf into an internal test node. Processed examples
live in a bounded FIFO window; when evicted, their contribution to the
statistics is forgotten. When drift adaptation is enabled, internal
nodes whose prequential error degrades grow alternate subtrees over the
same stream, and an alternate that outperforms its host replaces it.

A Tree is not safe for concurrent use: Process is the only mutator and
runs to completion per example, and predictions must not be interleaved
with it on the same instance.
*/
package sapling
