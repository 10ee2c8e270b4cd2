package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/config"
	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/secrets"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

func TestFlagChanged(t *testing.T) {
	if flagChanged(nil, "offset") {
		t.Error("expected false for nil cmd")
	}

	cmd := &cobra.Command{}
	cmd.Flags().Int("offset", 0, "")
	if flagChanged(cmd, "offset") {
		t.Error("expected false for unset flag")
	}
	if err := cmd.Flags().Set("offset", "3"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if !flagChanged(cmd, "offset") {
		t.Error("expected true for set flag")
	}

	parent := &cobra.Command{}
	parent.PersistentFlags().String("format", "text", "")
	child := &cobra.Command{}
	parent.AddCommand(child)
	if err := parent.PersistentFlags().Set("format", "json"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if !flagChanged(child, "format") {
		t.Error("expected true for inherited flag")
	}
}

func TestFormatConfigLoadError(t *testing.T) {
	if formatConfigLoadError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	err := formatConfigLoadError(errors.New("file not found"))
	if err.Error() != "load config: file not found" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func withActiveConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := activeConfig
	activeConfig = cfg
	t.Cleanup(func() { activeConfig = prev })
}

func TestEffectiveOffsetAndOverwrite(t *testing.T) {
	withActiveConfig(t, &config.Config{PageOffset: 7, OverwriteOutput: true})

	cmd := &cobra.Command{}
	cmd.Flags().Int("offset", 0, "")
	cmd.Flags().Bool("write", false, "")

	if got := effectiveOffset(cmd, 0); got != 7 {
		t.Errorf("effectiveOffset() = %d, want config value 7", got)
	}
	if got := effectiveOverwrite(cmd, false); !got {
		t.Error("effectiveOverwrite() = false, want config value true")
	}

	_ = cmd.Flags().Set("offset", "-2")
	_ = cmd.Flags().Set("write", "false")
	if got := effectiveOffset(cmd, -2); got != -2 {
		t.Errorf("effectiveOffset() = %d, want flag value -2", got)
	}
	if got := effectiveOverwrite(cmd, false); got {
		t.Error("effectiveOverwrite() = true, want flag value false")
	}
}

func passwordCommand(t *testing.T, stdin io.Reader) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("password", "", "")
	cmd.SetContext(withIO(context.Background(), stdin, &bytes.Buffer{}, &bytes.Buffer{}))
	return cmd
}

func TestResolvePassword(t *testing.T) {
	withActiveConfig(t, &config.Config{})
	store := newMemStore()
	_ = store.Set("book.pdf", "from-keyring")
	installMemStore(t, store)

	env := map[string]string{}
	prevEnv := envGet
	envGet = func(key string) string { return env[key] }
	t.Cleanup(func() { envGet = prevEnv })

	cmd := passwordCommand(t, nil)

	pw, source := resolvePassword(cmd, "", "/docs/book.pdf")
	if pw != "from-keyring" || source != passwordSourceKeyring {
		t.Errorf("keyring: got %q from %s", pw, source)
	}

	env[passwordEnv] = "from-env"
	pw, source = resolvePassword(cmd, "", "/docs/book.pdf")
	if pw != "from-env" || source != passwordSourceEnv {
		t.Errorf("env: got %q from %s", pw, source)
	}

	_ = cmd.Flags().Set("password", "from-flag")
	pw, source = resolvePassword(cmd, "from-flag", "/docs/book.pdf")
	if pw != "from-flag" || source != passwordSourceFlag {
		t.Errorf("flag: got %q from %s", pw, source)
	}

	pw, source = resolvePassword(passwordCommand(t, nil), "", "other.pdf")
	if source != passwordSourceEnv {
		t.Errorf("env should still win over a missing keyring entry, got %q from %s", pw, source)
	}
}

func TestResolvePasswordKeyringUnavailable(t *testing.T) {
	withActiveConfig(t, &config.Config{})
	prevStore := openSecretsStore
	openSecretsStore = func(string) (secrets.Store, error) { return nil, errors.New("no keyring") }
	t.Cleanup(func() { openSecretsStore = prevStore })
	prevEnv := envGet
	envGet = func(string) string { return "" }
	t.Cleanup(func() { envGet = prevEnv })

	pw, source := resolvePassword(passwordCommand(t, nil), "", "a.pdf")
	if pw != "" || source != passwordSourceNone {
		t.Errorf("got %q from %s, want none", pw, source)
	}
}

func TestOpenInputDocumentPrompts(t *testing.T) {
	withActiveConfig(t, &config.Config{})
	installMemStore(t, newMemStore())
	prevEnv := envGet
	envGet = func(string) string { return "" }
	t.Cleanup(func() { envGet = prevEnv })

	opener := &fakeOpener{passwords: map[string]string{"locked.pdf": "s3cret"}}
	installFakeOpener(t, opener)

	prevTerm := stdinIsTerminal
	t.Cleanup(func() { stdinIsTerminal = prevTerm })

	// Not a terminal: the password error surfaces.
	stdinIsTerminal = func(io.Reader) bool { return false }
	_, err := openInputDocument(passwordCommand(t, strings.NewReader("s3cret\n")), "locked.pdf", "")
	var pwErr document.PasswordError
	if !errors.As(err, &pwErr) || !pwErr.Missing {
		t.Fatalf("expected missing password error, got %v", err)
	}

	// Terminal: prompt once and retry.
	stdinIsTerminal = func(io.Reader) bool { return true }
	doc, err := openInputDocument(passwordCommand(t, strings.NewReader("s3cret\n")), "locked.pdf", "")
	if err != nil {
		t.Fatalf("openInputDocument() error = %v", err)
	}
	if doc.Path() != "locked.pdf" {
		t.Errorf("Path() = %q", doc.Path())
	}
	if got := opener.gotPW[len(opener.gotPW)-1]; got != "s3cret" {
		t.Errorf("retried with %q, want prompted password", got)
	}
}

func TestOpenInputDocumentWrongPasswordNoPrompt(t *testing.T) {
	withActiveConfig(t, &config.Config{})
	installMemStore(t, newMemStore())
	opener := &fakeOpener{passwords: map[string]string{"locked.pdf": "right"}}
	installFakeOpener(t, opener)
	prevTerm := stdinIsTerminal
	stdinIsTerminal = func(io.Reader) bool { return true }
	t.Cleanup(func() { stdinIsTerminal = prevTerm })

	cmd := passwordCommand(t, strings.NewReader("right\n"))
	_ = cmd.Flags().Set("password", "wrong")
	_, err := openInputDocument(cmd, "locked.pdf", "wrong")
	var pwErr document.PasswordError
	if !errors.As(err, &pwErr) || pwErr.Missing {
		t.Fatalf("expected invalid password error, got %v", err)
	}
	if len(opener.opened) != 1 {
		t.Errorf("opened %d times, want no retry", len(opener.opened))
	}
}

func TestLoadForestErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := loadForest(ctx, writeTocFile(t, "1 A\nnope\n"), 0)
	var syntaxErr *toc.SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Line != 2 {
		t.Fatalf("expected syntax error on line 2, got %v", err)
	}

	_, _, err = loadForest(ctx, writeTocFile(t, "+1 A\n"), 0)
	if !errors.Is(err, outline.ErrRootDepth) {
		t.Fatalf("expected ErrRootDepth, got %v", err)
	}

	// Offsets saturate at zero, which Build then rejects.
	_, _, err = loadForest(ctx, writeTocFile(t, "3 A\n"), -5)
	if !errors.Is(err, outline.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestLoadForestStdin(t *testing.T) {
	ctx := withIO(context.Background(), strings.NewReader("1 A\n+2 B\n"), nil, nil)
	parsed, forest, err := loadForest(ctx, "-", 1)
	if err != nil {
		t.Fatalf("loadForest() error = %v", err)
	}
	if parsed.Len() != 2 || len(forest) != 1 || forest[0].Page != 1 || forest[0].Children[0].Page != 2 {
		t.Errorf("unexpected forest %+v", forest)
	}
	if displayName("-") != "<stdin>" {
		t.Errorf("displayName(-) = %q", displayName("-"))
	}
}
