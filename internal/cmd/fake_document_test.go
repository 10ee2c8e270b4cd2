package cmd

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/secrets"
)

// fakeDocument is an in-memory document.Document.
type fakeDocument struct {
	path    string
	outline outline.Forest
	saved   map[string]outline.Forest
	deleted bool
}

var _ document.Document = (*fakeDocument)(nil)

func (d *fakeDocument) Path() string { return d.path }

func (d *fakeDocument) HasOutline() (bool, error) { return len(d.outline) > 0, nil }

func (d *fakeDocument) Outline() (outline.Forest, error) {
	if d.outline == nil {
		return outline.Forest{}, nil
	}
	return d.outline, nil
}

func (d *fakeDocument) SetOutline(f outline.Forest) error {
	if len(d.outline) > 0 {
		return document.OutlineExistsError{Message: "document already contains bookmarks; clear them before applying new ones"}
	}
	d.outline = f
	return nil
}

func (d *fakeDocument) DeleteOutline() error {
	d.outline = nil
	d.deleted = true
	return nil
}

func (d *fakeDocument) Save(path string, overwrite bool) error {
	if _, exists := d.saved[path]; exists && !overwrite {
		return document.OutputExistsError{Message: path + " already exists; use --write to replace it"}
	}
	if d.saved == nil {
		d.saved = map[string]outline.Forest{}
	}
	d.saved[path] = d.outline
	return nil
}

// fakeOpener replaces openDocument. Documents listed in locked need the
// given password.
type fakeOpener struct {
	docs      map[string]*fakeDocument
	passwords map[string]string
	opened    []string
	gotPW     []string
}

func installFakeOpener(t *testing.T, f *fakeOpener) {
	t.Helper()
	prev := openDocument
	openDocument = func(path, password string, _ *slog.Logger) (document.Document, error) {
		f.opened = append(f.opened, path)
		f.gotPW = append(f.gotPW, password)
		if want, locked := f.passwords[path]; locked && password != want {
			if password == "" {
				return nil, document.PasswordError{Message: path + " is password protected; use --password to provide one", Missing: true}
			}
			return nil, document.PasswordError{Message: "invalid password for " + path}
		}
		doc, ok := f.docs[path]
		if !ok {
			doc = &fakeDocument{path: path}
			if f.docs == nil {
				f.docs = map[string]*fakeDocument{}
			}
			f.docs[path] = doc
		}
		return doc, nil
	}
	t.Cleanup(func() { openDocument = prev })
}

// memStore is an in-memory secrets.Store.
type memStore struct {
	mu    sync.Mutex
	items map[string]string
}

var _ secrets.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{items: map[string]string{}} }

func (s *memStore) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pw, ok := s.items[name]
	if !ok {
		return "", secrets.ErrNotFound
	}
	return pw, nil
}

func (s *memStore) Set(name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = password
	return nil
}

func (s *memStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return secrets.ErrNotFound
	}
	delete(s.items, name)
	return nil
}

func (s *memStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys, nil
}

func installMemStore(t *testing.T, s *memStore) {
	t.Helper()
	prev := openSecretsStore
	openSecretsStore = func(string) (secrets.Store, error) { return s, nil }
	t.Cleanup(func() { openSecretsStore = prev })
}
