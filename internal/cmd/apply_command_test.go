package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/outline"
)

func newDocFixture(t *testing.T, docs map[string]*fakeDocument) *fakeOpener {
	t.Helper()
	opener := &fakeOpener{docs: docs}
	installFakeOpener(t, opener)
	installMemStore(t, newMemStore())
	return opener
}

func existingForest() outline.Forest {
	return outline.Forest{{Title: "Old", Page: 0}}
}

func TestApplyInstallsForest(t *testing.T) {
	opener := newDocFixture(t, nil)
	tocPath := writeTocFile(t, "1 Intro\n+2 Part\n3 End\n")

	res, err := runCLI(t, nil, "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf")
	if err != nil {
		t.Fatalf("apply: %v (stderr %q)", err, res.err)
	}

	want := outline.Forest{
		{Title: "Intro", Page: 0, Children: []*outline.Node{{Title: "Part", Page: 1}}},
		{Title: "End", Page: 2},
	}
	got := opener.docs["in.pdf"].saved["out.pdf"]
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("saved forest mismatch (-want +got):\n%s", diff)
	}
	if res.out != "Applied 3 bookmarks to out.pdf\n" {
		t.Errorf("status = %q", res.out)
	}
}

func TestApplyOffsetAndStdin(t *testing.T) {
	opener := newDocFixture(t, nil)

	_, err := runCLI(t, strings.NewReader("1 A\n2 B\n"), "apply", "-i", "in.pdf", "-t", "-", "-o", "out.pdf", "--offset", "10")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := opener.docs["in.pdf"].saved["out.pdf"]
	if len(got) != 2 || got[0].Page != 10 || got[1].Page != 11 {
		t.Errorf("unexpected pages in %+v", got)
	}
}

func TestApplyRefusesExistingOutline(t *testing.T) {
	newDocFixture(t, map[string]*fakeDocument{
		"in.pdf": {path: "in.pdf", outline: existingForest()},
	})
	tocPath := writeTocFile(t, "1 New\n")

	res, err := runCLI(t, nil, "--error-format", "json", "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf")
	var existsErr document.OutlineExistsError
	if !errors.As(err, &existsErr) {
		t.Fatalf("expected OutlineExistsError, got %v", err)
	}

	var env map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(res.err), &env); err != nil {
		t.Fatalf("parse error envelope %q: %v", res.err, err)
	}
	if env["error"]["type"] != "outline_exists" || env["error"]["category"] != "user" {
		t.Errorf("unexpected envelope %v", env)
	}
}

func TestApplyForceReplaces(t *testing.T) {
	opener := newDocFixture(t, map[string]*fakeDocument{
		"in.pdf": {path: "in.pdf", outline: existingForest()},
	})
	tocPath := writeTocFile(t, "1 New\n")

	res, err := runCLI(t, nil, "--format", "json", "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf", "-f")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	doc := opener.docs["in.pdf"]
	if !doc.deleted {
		t.Error("existing outline was not deleted")
	}
	if got := doc.saved["out.pdf"]; len(got) != 1 || got[0].Title != "New" {
		t.Errorf("saved forest = %+v", got)
	}

	var result applyResult
	if err := json.Unmarshal([]byte(res.out), &result); err != nil {
		t.Fatalf("parse output %q: %v", res.out, err)
	}
	want := applyResult{Status: "applied", Input: "in.pdf", Output: "out.pdf", Entries: 1, Roots: 1, Replaced: true}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyBadTocNeverOpensDocument(t *testing.T) {
	opener := newDocFixture(t, nil)
	tocPath := writeTocFile(t, "1 A\n+++2 B\n")

	_, err := runCLI(t, nil, "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf")
	if !errors.Is(err, outline.ErrDepthJump) {
		t.Fatalf("expected ErrDepthJump, got %v", err)
	}
	if len(opener.opened) != 0 {
		t.Errorf("document opened despite invalid toc")
	}
}

func TestApplyOutputExists(t *testing.T) {
	newDocFixture(t, map[string]*fakeDocument{
		"in.pdf": {path: "in.pdf", saved: map[string]outline.Forest{"out.pdf": nil}},
	})
	tocPath := writeTocFile(t, "1 A\n")

	_, err := runCLI(t, nil, "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf")
	var outErr document.OutputExistsError
	if !errors.As(err, &outErr) {
		t.Fatalf("expected OutputExistsError, got %v", err)
	}

	if _, err := runCLI(t, nil, "apply", "-i", "in.pdf", "-t", tocPath, "-o", "out.pdf", "-f", "-w"); err != nil {
		t.Fatalf("apply -w: %v", err)
	}
}

func TestApplyRequiresFlags(t *testing.T) {
	newDocFixture(t, nil)
	_, err := runCLI(t, nil, "apply", "-t", "toc.txt")
	if err == nil || !strings.Contains(err.Error(), "required flag") {
		t.Fatalf("expected required flag error, got %v", err)
	}
}
