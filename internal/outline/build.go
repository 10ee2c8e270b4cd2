package outline

import (
	"errors"
	"fmt"

	"github.com/salmonumbrella/pdfmark/internal/toc"
)

var (
	// ErrRootDepth is returned when the first entry is not at depth 0.
	ErrRootDepth = errors.New("first entry must have depth 0")
	// ErrDepthJump is returned when an entry is more than one level deeper
	// than the entry before it.
	ErrDepthJump = errors.New("entry is more than one level deeper than the previous entry")
	// ErrInvalidPage is returned for page 0; TOC pages start at 1.
	ErrInvalidPage = errors.New("invalid page number 0, pages start at 1")
	// ErrNegativeDepth is returned for entries with a depth below 0.
	ErrNegativeDepth = errors.New("negative depth")
)

// StructureError reports an entry that cannot be placed in the tree.
// Unwrap yields one of the Err* values above.
type StructureError struct {
	Kind  error
	Index int // 0-based position of the entry
	Entry toc.Entry
	Prev  int // depth of the preceding entry, for ErrDepthJump
}

// Line returns the 1-based TOC line of the offending entry.
func (e *StructureError) Line() int { return e.Index + 1 }

func (e *StructureError) Error() string {
	switch e.Kind {
	case ErrDepthJump:
		return fmt.Sprintf("line %d: depth jumps from %d to %d: %q", e.Line(), e.Prev, e.Entry.Depth, e.Entry.String())
	default:
		return fmt.Sprintf("line %d: %v: %q", e.Line(), e.Kind, e.Entry.String())
	}
}

func (e *StructureError) Unwrap() error { return e.Kind }

// Build nests entries into a forest. Each entry's page is converted from
// 1-based to 0-based. The first structural problem aborts the build and no
// forest is returned.
//
// Depth problems anywhere in entries are reported before any page problem:
// a TOC whose shape is wrong fails on its shape even when an earlier line
// also carries page 0.
//
// Nodes are placed with an explicit stack of open ancestors, so deeply nested
// input does not grow the call stack.
func Build(entries []toc.Entry) (Forest, error) {
	forest := Forest{}
	if len(entries) == 0 {
		return forest, nil
	}
	if err := checkDepths(entries); err != nil {
		return nil, err
	}

	// open[d] is the most recent node at depth d.
	open := make([]*Node, 0, 8)
	for i, e := range entries {
		if e.Page == 0 {
			return nil, &StructureError{Kind: ErrInvalidPage, Index: i, Entry: e}
		}

		node := &Node{Title: e.Title, Page: e.Page - 1}
		open = open[:e.Depth]
		if e.Depth == 0 {
			forest = append(forest, node)
		} else {
			parent := open[e.Depth-1]
			parent.Children = append(parent.Children, node)
		}
		open = append(open, node)
	}
	return forest, nil
}

// checkDepths verifies the nesting of entries: the first is a root and no
// entry sits more than one level below its predecessor.
func checkDepths(entries []toc.Entry) error {
	if entries[0].Depth != 0 {
		return &StructureError{Kind: ErrRootDepth, Index: 0, Entry: entries[0]}
	}
	prev := 0
	for i, e := range entries {
		if e.Depth < 0 {
			return &StructureError{Kind: ErrNegativeDepth, Index: i, Entry: e}
		}
		if e.Depth > prev+1 {
			return &StructureError{Kind: ErrDepthJump, Index: i, Entry: e, Prev: prev}
		}
		prev = e.Depth
	}
	return nil
}
