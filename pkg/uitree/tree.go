// Package uitree flattens accessibility snapshots from the device into an
// ordered list of nodes and extracts their screen bounds.
//
// Two snapshot shapes are accepted: nested "children" or "subnodes" arrays,
// with bounds either as a "boundsInScreen" object or a "bounds" string.
package uitree

import (
	"github.com/tidwall/gjson"
)

// Traversal guards for pathological snapshots.
const (
	MaxDepth = 256
	MaxNodes = 100000
)

// FlatNode is one accessibility node stripped of its children, placed at a
// fixed index in depth-first pre-order. Indexes are reproducible within one
// snapshot only.
type FlatNode struct {
	Index              int
	Depth              int
	Text               string
	ContentDescription string
	ResourceID         string
	ClassName          string

	// BoundsInScreen is the structured encoding, nil when absent.
	BoundsInScreen *Rect
	// BoundsText is the string encoding, e.g. "[0,0][1080,2400]".
	BoundsText string
}

// Label returns the most descriptive attribute: text, then content
// description, then resource id.
func (n FlatNode) Label() string {
	switch {
	case n.Text != "":
		return n.Text
	case n.ContentDescription != "":
		return n.ContentDescription
	default:
		return n.ResourceID
	}
}

// ShortClass returns the class name without its package, "N/A" when unknown.
func (n FlatNode) ShortClass() string {
	if n.ClassName == "" {
		return "N/A"
	}
	for i := len(n.ClassName) - 1; i >= 0; i-- {
		if n.ClassName[i] == '.' {
			return n.ClassName[i+1:]
		}
	}
	return n.ClassName
}

// Parse decodes a raw snapshot. A top-level JSON string is decoded again
// (the device sometimes double-encodes the tree). Undecodable input yields an
// absent snapshot, which flattens to nothing.
func Parse(data []byte) gjson.Result {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}
	}
	return decodeText(gjson.ParseBytes(data))
}

// FromResponse extracts the tree from a fast-tree response body. The tree is
// the "result" field when present and non-empty, otherwise the body itself.
func FromResponse(body []byte) gjson.Result {
	root := Parse(body)
	if result := root.Get("result"); truthy(result) {
		root = result
	}
	return decodeText(root)
}

// FromFullState extracts the tree from a full-state response body, where it
// sits under "a11y_tree" of the (optionally "result"-wrapped) state.
func FromFullState(body []byte) gjson.Result {
	state := Parse(body)
	if result := state.Get("result"); result.Exists() {
		state = decodeText(result)
	}
	return decodeText(state.Get("a11y_tree"))
}

// decodeText parses r again when it is a JSON string.
func decodeText(r gjson.Result) gjson.Result {
	if r.Type != gjson.String {
		return r
	}
	if !gjson.Valid(r.Str) {
		return gjson.Result{}
	}
	return gjson.Parse(r.Str)
}

// Flatten walks snapshot depth-first in pre-order. Objects are emitted, then
// their "children" (or, when children is empty or missing, "subnodes") are
// visited. Arrays are walked element-wise at any nesting level. Nothing is
// de-duplicated.
func Flatten(snapshot gjson.Result) []FlatNode {
	w := &walker{}
	w.walk(decodeText(snapshot), 0, 0)
	return w.nodes
}

// FlattenBytes is Parse followed by Flatten.
func FlattenBytes(data []byte) []FlatNode {
	return Flatten(Parse(data))
}

type walker struct {
	nodes []FlatNode
}

func (w *walker) walk(n gjson.Result, level, depth int) {
	if level > MaxDepth || len(w.nodes) >= MaxNodes {
		return
	}

	switch {
	case n.IsArray():
		n.ForEach(func(_, item gjson.Result) bool {
			w.walk(item, level+1, depth)
			return len(w.nodes) < MaxNodes
		})
	case n.IsObject():
		w.nodes = append(w.nodes, newFlatNode(n, len(w.nodes), depth))
		children := n.Get("children")
		if !truthy(children) {
			children = n.Get("subnodes")
		}
		if truthy(children) {
			w.walk(children, level+1, depth+1)
		}
	}
}

func newFlatNode(n gjson.Result, index, depth int) FlatNode {
	node := FlatNode{
		Index:              index,
		Depth:              depth,
		Text:               stringField(n, "text"),
		ContentDescription: stringField(n, "contentDescription"),
		ResourceID:         stringField(n, "resourceId"),
		ClassName:          stringField(n, "className"),
		BoundsText:         stringField(n, "bounds"),
	}
	if b := n.Get("boundsInScreen"); b.IsObject() {
		node.BoundsInScreen = &Rect{
			Left:   int(b.Get("left").Int()),
			Top:    int(b.Get("top").Int()),
			Right:  int(b.Get("right").Int()),
			Bottom: int(b.Get("bottom").Int()),
		}
	}
	return node
}

// stringField returns the value of key when it is a JSON string, "" otherwise.
func stringField(n gjson.Result, key string) string {
	v := n.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// truthy reports whether r holds a non-empty value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	}
	return true
}
