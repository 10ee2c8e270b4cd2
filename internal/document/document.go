// Package document reads and writes the bookmark tree of PDF files.
package document

import "github.com/salmonumbrella/pdfmark/internal/outline"

// Document is a PDF held in memory. Mutating calls only change the
// in-memory copy; nothing reaches the disk until Save.
type Document interface {
	// Path returns the file the document was opened from.
	Path() string

	// HasOutline reports whether the document carries bookmarks.
	HasOutline() (bool, error)

	// Outline returns the bookmark tree. A document without bookmarks
	// yields an empty forest.
	Outline() (outline.Forest, error)

	// SetOutline installs forest as the bookmark tree. It fails with
	// OutlineExistsError if the document already has bookmarks.
	SetOutline(forest outline.Forest) error

	// DeleteOutline removes all bookmarks. It is a no-op for documents
	// without bookmarks.
	DeleteOutline() error

	// Save writes the document to path. An existing file is only
	// replaced when overwrite is true.
	Save(path string, overwrite bool) error
}

// Error types
type (
	// PasswordError indicates a missing or wrong password.
	PasswordError struct {
		Message string
		Missing bool
	}
	// OutlineExistsError indicates the document already has bookmarks.
	OutlineExistsError struct{ Message string }
	// OutputExistsError indicates the output file is already present.
	OutputExistsError struct{ Message string }
)

func (e PasswordError) Error() string      { return e.Message }
func (e OutlineExistsError) Error() string { return e.Message }
func (e OutputExistsError) Error() string  { return e.Message }

// Style is the per-bookmark styling kept in outline.Node.Attrs.
type Style struct {
	Bold   bool
	Italic bool
	Color  *RGB
}

// RGB is a bookmark text colour with components in [0, 1].
type RGB struct {
	R, G, B float32
}
