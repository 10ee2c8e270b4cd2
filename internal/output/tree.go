package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/salmonumbrella/pdfmark/internal/outline"
)

const (
	guideBranch = "├── "
	guideLast   = "└── "
	guidePipe   = "│   "
	guideBlank  = "    "
)

// WriteTree draws f as an indented tree with 1-based page numbers. Nodes
// without a destination show "-".
func WriteTree(w io.Writer, f outline.Forest, st Styler) error {
	type frame struct {
		nodes  []*outline.Node
		i      int
		prefix string
	}

	stack := []frame{{nodes: f}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[top.i]
		top.i++
		last := top.i == len(top.nodes)
		depth := len(stack) - 1

		guide, childPrefix := guideBranch, top.prefix+guidePipe
		if last {
			guide, childPrefix = guideLast, top.prefix+guideBlank
		}

		title := n.Title
		if depth == 0 {
			title = st.render(topStyle, title)
		}
		line := st.Dim(top.prefix+guide) + title + "  " + st.Dim(pageLabel(n.Page))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		if len(n.Children) > 0 {
			// top may be invalidated by append.
			stack = append(stack, frame{nodes: n.Children, prefix: childPrefix})
		}
	}
	return nil
}

func pageLabel(page int) string {
	if page < 0 {
		return "-"
	}
	return strconv.Itoa(page + 1)
}

// TreeString returns the WriteTree rendering of f without styling.
func TreeString(f outline.Forest) string {
	var b strings.Builder
	_ = WriteTree(&b, f, Styler{})
	return b.String()
}
