// Package outline converts between flat TOC entries and the nested bookmark
// tree installed into a document.
//
// Pages are 1-based in TOC entries and 0-based in tree nodes. Build and
// Flatten are the only places where the two are converted.
package outline

import "github.com/salmonumbrella/pdfmark/internal/toc"

// NoPage marks a node without a target page.
const NoPage = -1

// Node is a bookmark in the tree.
type Node struct {
	Title    string  `json:"title" yaml:"title"`
	Page     int     `json:"page" yaml:"page"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Attrs holds whatever the document layer attaches to a bookmark
	// (styling, colour). It is carried along untouched.
	Attrs any `json:"-" yaml:"-"`
}

// Forest is the ordered list of top-level bookmarks.
type Forest []*Node

// Walk visits every node in pre-order together with its depth. Returning
// false from fn skips the node's children.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := make([]frame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, frame{f[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		if !fn(top.node, top.depth) {
			continue
		}
		kids := top.node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], top.depth + 1})
		}
	}
}

// Len returns the total number of nodes.
func (f Forest) Len() int {
	n := 0
	f.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// MaxDepth returns the depth of the deepest node, or -1 for an empty forest.
func (f Forest) MaxDepth() int {
	deepest := -1
	f.Walk(func(_ *Node, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}

// Flatten lists the forest in pre-order as TOC entries. Node pages are
// converted back to 1-based; nodes without a page (NoPage) point at page 1.
func Flatten(f Forest) []toc.Entry {
	entries := make([]toc.Entry, 0, len(f))
	f.Walk(func(n *Node, depth int) bool {
		page := 1
		if n.Page >= 0 {
			page = n.Page + 1
		}
		entries = append(entries, toc.Entry{Depth: depth, Page: page, Title: n.Title})
		return true
	})
	return entries
}
