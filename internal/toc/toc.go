// Package toc reads and writes the plain-text table-of-contents notation
// used to describe PDF bookmarks.
//
// Each line has the form
//
//	+++12 Title of the entry
//
// where the number of leading '+' characters is the nesting depth, the
// digits are the 1-based page number and everything after the single space
// is the title.
package toc

import (
	"fmt"
	"math"
	"strings"
)

// MaxPage is the largest page number the notation can carry. Pages are
// held in int, so pdfmark only builds for 64-bit targets.
const MaxPage = math.MaxUint32

// Entry is one line of a TOC: a bookmark at a given depth pointing at a
// 1-based page.
type Entry struct {
	Depth int    `json:"depth" yaml:"depth"`
	Page  int    `json:"page" yaml:"page"`
	Title string `json:"title" yaml:"title"`
}

// String renders the entry as a single TOC line.
func (e Entry) String() string {
	var b strings.Builder
	writeEntry(&b, e)
	return b.String()
}

// Toc is an ordered list of entries. The order is the pre-order traversal
// of the bookmark tree.
type Toc struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Len returns the number of entries.
func (t *Toc) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// String renders the TOC. Lines are joined with '\n' and the last line has
// no terminator.
func (t *Toc) String() string {
	if t == nil {
		return ""
	}
	return Render(t.Entries)
}

// Offset shifts every page number by n. Results saturate at 0 and MaxPage.
func (t *Toc) Offset(n int) {
	if t == nil || n == 0 {
		return
	}
	for i := range t.Entries {
		t.Entries[i].Page = addPage(t.Entries[i].Page, n)
	}
}

// addPage clamps before adding, so offsets near the int limits cannot wrap.
func addPage(page, n int) int {
	switch {
	case n > 0 && n > MaxPage-page:
		return MaxPage
	case n < 0 && n < -page:
		return 0
	}
	return page + n
}

// Render serializes entries to TOC text.
func Render(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeEntry(&b, e)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e Entry) {
	for i := 0; i < e.Depth; i++ {
		b.WriteByte('+')
	}
	fmt.Fprintf(b, "%d %s", e.Page, e.Title)
}
