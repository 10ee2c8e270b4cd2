package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/salmonumbrella/pdfmark/internal/outline"
)

// Option configures Open.
type Option func(*options)

type options struct {
	password string
	logger   *slog.Logger
}

// WithPassword sets the user/owner password for encrypted documents.
func WithPassword(password string) Option {
	return func(o *options) {
		o.password = password
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

var _ Document = (*PDF)(nil)

// PDF is a Document backed by pdfcpu.
type PDF struct {
	path   string
	data   []byte
	conf   *model.Configuration
	logger *slog.Logger
}

// Open reads the PDF at path into memory and checks that it can be
// decrypted with the configured password.
func Open(path string, opts ...Option) (*PDF, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = o.password
	conf.OwnerPW = o.password

	d := &PDF{path: path, data: data, conf: conf, logger: o.logger}

	pages, err := api.PageCount(d.reader(), conf)
	if err != nil {
		return nil, d.wrapReadError(err, o.password == "")
	}
	d.logger.Debug("opened document", "path", path, "bytes", len(data), "pages", pages)
	return d, nil
}

// Path returns the file the document was opened from.
func (d *PDF) Path() string { return d.path }

// HasOutline reports whether the document carries bookmarks.
func (d *PDF) HasOutline() (bool, error) {
	bms, err := d.bookmarks()
	if err != nil {
		return false, err
	}
	return len(bms) > 0, nil
}

// Outline returns the bookmark tree.
func (d *PDF) Outline() (outline.Forest, error) {
	bms, err := d.bookmarks()
	if err != nil {
		return nil, err
	}
	return fromBookmarks(bms), nil
}

// SetOutline installs forest as the bookmark tree.
func (d *PDF) SetOutline(forest outline.Forest) error {
	exists, err := d.HasOutline()
	if err != nil {
		return err
	}
	if exists {
		return OutlineExistsError{Message: "document already contains bookmarks; clear them before applying new ones"}
	}
	if len(forest) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := api.AddBookmarks(d.reader(), &buf, toBookmarks(forest), false, d.conf); err != nil {
		return fmt.Errorf("set bookmarks: %w", err)
	}
	d.logger.Debug("installed bookmarks", "path", d.path, "count", forest.Len())
	d.data = buf.Bytes()
	return nil
}

// DeleteOutline removes all bookmarks.
func (d *PDF) DeleteOutline() error {
	exists, err := d.HasOutline()
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	var buf bytes.Buffer
	if err := api.RemoveBookmarks(d.reader(), &buf, d.conf); err != nil {
		if isNoOutlineError(err) {
			return nil
		}
		return fmt.Errorf("remove bookmarks: %w", err)
	}
	d.logger.Debug("removed bookmarks", "path", d.path)
	d.data = buf.Bytes()
	return nil
}

// Save writes the document to path.
func (d *PDF) Save(path string, overwrite bool) error {
	return WriteFile(path, d.data, overwrite)
}

func (d *PDF) reader() io.ReadSeeker {
	return bytes.NewReader(d.data)
}

func (d *PDF) bookmarks() ([]pdfcpu.Bookmark, error) {
	bms, err := api.Bookmarks(d.reader(), d.conf)
	if err != nil {
		if isNoOutlineError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	return bms, nil
}

func (d *PDF) wrapReadError(err error, noPassword bool) error {
	if !isPasswordError(err) {
		return fmt.Errorf("open %s: %w", d.path, err)
	}
	if noPassword {
		return PasswordError{
			Message: fmt.Sprintf("%s is password protected; use --password to provide one", d.path),
			Missing: true,
		}
	}
	return PasswordError{Message: fmt.Sprintf("invalid password for %s", d.path)}
}

// WriteFile writes data to path, refusing to replace an existing file
// unless overwrite is set.
func WriteFile(path string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return OutputExistsError{Message: fmt.Sprintf("%s already exists; use --write to replace it", path)}
		}
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isPasswordError(err error) bool {
	return errors.Is(err, pdfcpu.ErrWrongPassword)
}

// isNoOutlineError matches api.ErrNoOutlines and pdfcpu's unexported
// errNoBookmarks, which can only be recognised by its text.
func isNoOutlineError(err error) bool {
	if errors.Is(err, api.ErrNoOutlines) {
		return true
	}
	return strings.Contains(err.Error(), "pdfcpu: no bookmarks available")
}

// fromBookmarks converts pdfcpu bookmarks (1-based pages) into nodes
// (0-based pages).
func fromBookmarks(bms []pdfcpu.Bookmark) outline.Forest {
	forest := make(outline.Forest, 0, len(bms))
	for _, bm := range bms {
		node := &outline.Node{
			Title: bm.Title,
			Page:  outline.NoPage,
			Attrs: styleOf(bm),
		}
		if bm.PageFrom > 0 {
			node.Page = bm.PageFrom - 1
		}
		if len(bm.Kids) > 0 {
			node.Children = fromBookmarks(bm.Kids)
		}
		forest = append(forest, node)
	}
	return forest
}

// toBookmarks is the inverse of fromBookmarks. Nodes without a page point
// at the first page.
func toBookmarks(nodes []*outline.Node) []pdfcpu.Bookmark {
	bms := make([]pdfcpu.Bookmark, 0, len(nodes))
	for _, n := range nodes {
		bm := pdfcpu.Bookmark{Title: n.Title, PageFrom: 1}
		if n.Page >= 0 {
			bm.PageFrom = n.Page + 1
		}
		if s, ok := n.Attrs.(Style); ok {
			bm.Bold = s.Bold
			bm.Italic = s.Italic
			if s.Color != nil {
				bm.Color = &color.SimpleColor{R: s.Color.R, G: s.Color.G, B: s.Color.B}
			}
		}
		if len(n.Children) > 0 {
			bm.Kids = toBookmarks(n.Children)
		}
		bms = append(bms, bm)
	}
	return bms
}

func styleOf(bm pdfcpu.Bookmark) any {
	if !bm.Bold && !bm.Italic && bm.Color == nil {
		return nil
	}
	s := Style{Bold: bm.Bold, Italic: bm.Italic}
	if bm.Color != nil {
		s.Color = &RGB{R: bm.Color.R, G: bm.Color.G, B: bm.Color.B}
	}
	return s
}
