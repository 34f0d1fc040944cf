/*
Package checkpoint serializes trees as JSON documents that embed their
schema, so that a tree can be saved while its stream is paused and
restored later without its original metadata file, and defines a Store
interface for keeping named checkpoints on an external backend.
*/
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pbanos/sapling"
	fjson "github.com/pbanos/sapling/feature/json"
)

/*
Store is an interface to manage named checkpoints on some backend.

All its methods take a context that may allow cancelling the operation
(thus forcing the return of an error) if the implementation allows it.
*/
type Store interface {
	// Save stores the given checkpoint data under the given name,
	// replacing any previous checkpoint with that name. It returns an
	// error if the data cannot be stored.
	Save(ctx context.Context, name string, data []byte) error
	// Load returns the checkpoint data stored under the given name, or
	// nil when no checkpoint with that name exists, or an error when
	// the backend cannot be queried.
	Load(ctx context.Context, name string) ([]byte, error)
	// Delete removes the checkpoint stored under the given name. It
	// returns an error if a checkpoint exists but cannot be removed.
	Delete(ctx context.Context, name string) error
}

type jsonCheckpoint struct {
	Schema     json.RawMessage `json:"schema"`
	Tree       *jsonNode       `json:"tree"`
	NextLeafID int             `json:"nextLeafId"`
	NextBinID  int             `json:"nextBinId"`
}

type jsonNode struct {
	ID           int         `json:"id"`
	SplitFeature *int        `json:"split,omitempty"`
	SplitValue   float64     `json:"splitVal,omitempty"`
	UsedFeatures []int       `json:"used,omitempty"`
	ExamplesSeen int         `json:"seen,omitempty"`
	LabelCounts  []int       `json:"labels,omitempty"`
	TargetCount  int         `json:"tCount,omitempty"`
	TargetMean   float64     `json:"tMean,omitempty"`
	TargetVarSum float64     `json:"tVarSum,omitempty"`
	TargetSum    float64     `json:"tSum,omitempty"`
	Children     []*jsonNode `json:"children,omitempty"`
	AltTrees     []*jsonNode `json:"alts,omitempty"`
}

/*
Marshal takes a tree and returns a slice of bytes with the tree's
schema and snapshot encoded as JSON, or an error if the encoding could
not be performed.
*/
func Marshal(t *sapling.Tree) ([]byte, error) {
	schema, err := fjson.MarshalSchema(t.Schema())
	if err != nil {
		return nil, fmt.Errorf("marshalling checkpoint: %v", err)
	}
	snap := t.Snapshot()
	cp := &jsonCheckpoint{
		Schema:     json.RawMessage(schema),
		Tree:       encodeNode(snap.Root),
		NextLeafID: snap.NextLeafID,
		NextBinID:  snap.NextBinID,
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("marshalling checkpoint: %v", err)
	}
	return data, nil
}

/*
Unmarshal takes a slice of bytes with a checkpoint encoded by Marshal
and a configuration, and returns the tree restored from it or an error.
A nil config means all defaults.
*/
func Unmarshal(data []byte, config *sapling.Config) (*sapling.Tree, error) {
	cp := &jsonCheckpoint{}
	err := json.Unmarshal(data, cp)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling checkpoint: %v", err)
	}
	if cp.Tree == nil {
		return nil, fmt.Errorf("unmarshalling checkpoint: no tree")
	}
	schema, err := fjson.UnmarshalSchema(cp.Schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling checkpoint: %v", err)
	}
	snap := &sapling.Snapshot{
		Root:       decodeNode(cp.Tree),
		NextLeafID: cp.NextLeafID,
		NextBinID:  cp.NextBinID,
	}
	t, err := sapling.NewFromSnapshot(schema, config, snap)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling checkpoint: %v", err)
	}
	return t, nil
}

/*
SaveTree takes a store, a name and a tree, and saves the tree's
checkpoint under the name on the store.
*/
func SaveTree(ctx context.Context, s Store, name string, t *sapling.Tree) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	return s.Save(ctx, name, data)
}

/*
LoadTree takes a store, a name and a configuration and returns the tree
restored from the checkpoint saved under the name, or nil when the
store has no checkpoint with that name, or an error.
*/
func LoadTree(ctx context.Context, s Store, name string, config *sapling.Config) (*sapling.Tree, error) {
	data, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return Unmarshal(data, config)
}

func encodeNode(sn *sapling.SnapshotNode) *jsonNode {
	jn := &jsonNode{
		ID:           sn.ID,
		UsedFeatures: sn.UsedFeatures,
		ExamplesSeen: sn.ExamplesSeen,
		LabelCounts:  sn.LabelCounts,
		TargetCount:  sn.TargetCount,
		TargetMean:   sn.TargetMean,
		TargetVarSum: sn.TargetVarSum,
		TargetSum:    sn.TargetSum,
	}
	if !sn.Leaf() {
		split := sn.SplitFeature
		jn.SplitFeature = &split
		jn.SplitValue = sn.SplitValue
	}
	for _, c := range sn.Children {
		jn.Children = append(jn.Children, encodeNode(c))
	}
	for _, alt := range sn.AltTrees {
		jn.AltTrees = append(jn.AltTrees, encodeNode(alt))
	}
	return jn
}

func decodeNode(jn *jsonNode) *sapling.SnapshotNode {
	sn := &sapling.SnapshotNode{
		ID:           jn.ID,
		SplitFeature: -1,
		SplitValue:   jn.SplitValue,
		UsedFeatures: jn.UsedFeatures,
		ExamplesSeen: jn.ExamplesSeen,
		LabelCounts:  jn.LabelCounts,
		TargetCount:  jn.TargetCount,
		TargetMean:   jn.TargetMean,
		TargetVarSum: jn.TargetVarSum,
		TargetSum:    jn.TargetSum,
	}
	if jn.SplitFeature != nil {
		sn.SplitFeature = *jn.SplitFeature
	}
	for _, c := range jn.Children {
		sn.Children = append(sn.Children, decodeNode(c))
	}
	for _, alt := range jn.AltTrees {
		sn.AltTrees = append(sn.AltTrees, decodeNode(alt))
	}
	return sn
}
