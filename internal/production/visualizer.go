package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	bt "github.com/comalice/behaviortreex"
)

// DOTVisualizer renders live trees.
type DOTVisualizer struct{}

var statusFill = map[bt.Status]string{
	bt.StatusRunning: "gold",
	bt.StatusSuccess: "lightgreen",
	bt.StatusFailure: "salmon",
}

// Export generates Graphviz DOT source for the tree under root. Nodes are
// filled by their current status; inactive nodes are left blank.
func (v *DOTVisualizer) Export(root *bt.Root) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", root.ID())
	buf.WriteString("  rankdir=TB;\n  node [shape=box, fontsize=10, style=rounded];\n")

	var parents []string
	n := 0
	root.Walk(func(node bt.Node, depth int) bool {
		id := fmt.Sprintf("n%d", n)
		n++
		style := ""
		if fill, ok := statusFill[node.Status()]; ok {
			style = fmt.Sprintf(` style="rounded,filled" fillcolor=%s`, fill)
		}
		fmt.Fprintf(&buf, "  %s [label=%q%s];\n", id, fmt.Sprintf("%s\n%s", Kind(node), node.Name()), style)

		parents = parents[:depth]
		if depth > 0 {
			fmt.Fprintf(&buf, "  %s -> %s;\n", parents[depth-1], id)
		}
		parents = append(parents, id)
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

// NodeView is the JSON form of a tree node.
type NodeView struct {
	Kind     string     `json:"kind"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	Children []NodeView `json:"children,omitempty"`
}

// ExportJSON serializes the tree structure and statuses to JSON.
func (v *DOTVisualizer) ExportJSON(root *bt.Root) ([]byte, error) {
	return json.MarshalIndent(view(root), "", "  ")
}

func view(n bt.Node) NodeView {
	nv := NodeView{Kind: Kind(n), Name: n.Name(), Status: n.Status().String()}
	for _, c := range n.Children() {
		nv.Children = append(nv.Children, view(c))
	}
	return nv
}

// Kind names the node variant.
func Kind(n bt.Node) string {
	switch n.(type) {
	case *bt.Root:
		return "root"
	case *bt.Sequence:
		return "sequence"
	case *bt.Selector:
		return "selector"
	case *bt.Condition:
		return "condition"
	case *bt.Service:
		return "service"
	case *bt.Wait:
		return "wait"
	case *bt.Action:
		return "action"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", n), "*")
	}
}
