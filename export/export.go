/*
Package export serializes trees for external inspection, as XML, JSON
or DOT (graphviz) documents. The exported documents describe the tree's
structure and leaf predictions; they are not a persistence format (see
the checkpoint package for that).
*/
package export

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/feature"
)

type xmlNode struct {
	XMLName    xml.Name  `xml:"node"`
	ID         int       `xml:"id,attr"`
	Branch     string    `xml:"branch,attr,omitempty"`
	Feature    string    `xml:"feature,attr,omitempty"`
	Prediction string    `xml:"prediction,attr,omitempty"`
	Weight     int       `xml:"weight,attr,omitempty"`
	Children   []xmlNode `xml:"node"`
	AltTrees   []xmlNode `xml:"alternate>node"`
}

type jsonNode struct {
	ID         int        `json:"id"`
	Branch     string     `json:"branch,omitempty"`
	Feature    string     `json:"feature,omitempty"`
	Prediction string     `json:"prediction,omitempty"`
	Weight     int        `json:"weight,omitempty"`
	Children   []jsonNode `json:"children,omitempty"`
	AltTrees   []jsonNode `json:"alternates,omitempty"`
}

/*
WriteXML takes a tree and an io.Writer and writes the tree serialized
as an XML document onto the writer, returning an error when the
serialization or the writing fail.
*/
func WriteXML(t *sapling.Tree, w io.Writer) error {
	root, err := describe(t.Snapshot().Root, t.Schema(), "")
	if err != nil {
		return fmt.Errorf("exporting tree as XML: %v", err)
	}
	if _, err = io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("exporting tree as XML: %v", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err = enc.Encode(root.xml()); err != nil {
		return fmt.Errorf("exporting tree as XML: %v", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

/*
WriteJSON takes a tree and an io.Writer and writes the tree serialized
as a JSON document onto the writer, returning an error when the
serialization or the writing fail.
*/
func WriteJSON(t *sapling.Tree, w io.Writer) error {
	root, err := describe(t.Snapshot().Root, t.Schema(), "")
	if err != nil {
		return fmt.Errorf("exporting tree as JSON: %v", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(root.json()); err != nil {
		return fmt.Errorf("exporting tree as JSON: %v", err)
	}
	return nil
}

/*
WriteDOT takes a tree and an io.Writer and writes the tree as a DOT
digraph onto the writer, returning an error when the writing fails.
Alternate subtrees hang off their host with dashed edges.
*/
func WriteDOT(t *sapling.Tree, w io.Writer) error {
	buf := bufio.NewWriter(w)
	if _, err := buf.WriteString("digraph sapling {\n  edge [arrowsize=0.6, fontsize=10];\n"); err != nil {
		return err
	}
	root, err := describe(t.Snapshot().Root, t.Schema(), "")
	if err != nil {
		return fmt.Errorf("exporting tree as DOT: %v", err)
	}
	if err := root.dot(buf); err != nil {
		return err
	}
	if _, err := buf.WriteString("}\n"); err != nil {
		return err
	}
	return buf.Flush()
}

// describedNode is the format-independent description of a snapshot
// node: resolved feature and branch names plus the leaf prediction.
type describedNode struct {
	id         int
	branch     string
	feature    string
	prediction string
	weight     int
	children   []*describedNode
	altTrees   []*describedNode
}

func describe(sn *sapling.SnapshotNode, schema *feature.Schema, branch string) (*describedNode, error) {
	d := &describedNode{id: sn.ID, branch: branch, weight: sn.ExamplesSeen}
	if sn.Leaf() {
		d.prediction = leafPrediction(sn, schema)
		return d, nil
	}
	f := schema.Inputs()[sn.SplitFeature]
	d.feature = f.Name()
	for i, sc := range sn.Children {
		childBranch, err := branchName(f, i, sn.SplitValue)
		if err != nil {
			return nil, err
		}
		dc, err := describe(sc, schema, childBranch)
		if err != nil {
			return nil, err
		}
		d.children = append(d.children, dc)
	}
	for _, sa := range sn.AltTrees {
		da, err := describe(sa, schema, "")
		if err != nil {
			return nil, err
		}
		d.altTrees = append(d.altTrees, da)
	}
	return d, nil
}

func branchName(f feature.Feature, child int, splitValue float64) (string, error) {
	if df, ok := f.(*feature.DiscreteFeature); ok {
		return df.ValueAt(child)
	}
	if child == 0 {
		return fmt.Sprintf("<= %g", splitValue), nil
	}
	return fmt.Sprintf("> %g", splitValue), nil
}

func leafPrediction(sn *sapling.SnapshotNode, schema *feature.Schema) string {
	if target, ok := schema.Target().(*feature.DiscreteFeature); ok {
		best := 0
		for i, c := range sn.LabelCounts {
			if c > sn.LabelCounts[best] {
				best = i
			}
		}
		v, err := target.ValueAt(best)
		if err != nil {
			return ""
		}
		return v
	}
	return fmt.Sprintf("%g", sn.TargetMean)
}

func (d *describedNode) xml() xmlNode {
	n := xmlNode{
		ID:         d.id,
		Branch:     d.branch,
		Feature:    d.feature,
		Prediction: d.prediction,
		Weight:     d.weight,
	}
	for _, c := range d.children {
		n.Children = append(n.Children, c.xml())
	}
	for _, a := range d.altTrees {
		n.AltTrees = append(n.AltTrees, a.xml())
	}
	return n
}

func (d *describedNode) json() jsonNode {
	n := jsonNode{
		ID:         d.id,
		Branch:     d.branch,
		Feature:    d.feature,
		Prediction: d.prediction,
		Weight:     d.weight,
	}
	for _, c := range d.children {
		n.Children = append(n.Children, c.json())
	}
	for _, a := range d.altTrees {
		n.AltTrees = append(n.AltTrees, a.json())
	}
	return n
}

func (d *describedNode) dot(buf *bufio.Writer) error {
	label := d.feature
	if label == "" {
		label = d.prediction
	}
	if _, err := fmt.Fprintf(buf, "  N%d [label=%q];\n", d.id, label); err != nil {
		return err
	}
	for _, c := range d.children {
		if _, err := fmt.Fprintf(buf, "  N%d -> N%d [label=%q];\n", d.id, c.id, c.branch); err != nil {
			return err
		}
		if err := c.dot(buf); err != nil {
			return err
		}
	}
	for _, a := range d.altTrees {
		if _, err := fmt.Fprintf(buf, "  N%d -> N%d [style=dashed];\n", d.id, a.id); err != nil {
			return err
		}
		if err := a.dot(buf); err != nil {
			return err
		}
	}
	return nil
}
