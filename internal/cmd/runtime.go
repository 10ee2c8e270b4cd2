package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/config"
	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

// Password sources, reported in debug logs and `password` output.
const (
	passwordSourceFlag    = "flag"
	passwordSourceEnv     = "env"
	passwordSourceKeyring = "keyring"
	passwordSourcePrompt  = "prompt"
	passwordSourceNone    = "none"

	passwordEnv = "PDFMARK_PASSWORD"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}

// effectiveOffset returns --offset when given, otherwise the configured
// page_offset.
func effectiveOffset(cmd *cobra.Command, flagValue int) int {
	if flagChanged(cmd, "offset") || activeConfig == nil {
		return flagValue
	}
	return activeConfig.PageOffset
}

// effectiveOverwrite returns --write when given, otherwise the configured
// overwrite_output.
func effectiveOverwrite(cmd *cobra.Command, flagValue bool) bool {
	if flagChanged(cmd, "write") || activeConfig == nil {
		return flagValue
	}
	return activeConfig.OverwriteOutput
}

// passwordKey is the keyring name for a document.
func passwordKey(path string) string {
	return filepath.Base(strings.TrimSpace(path))
}

// resolvePassword picks the password for path with precedence
// flag > PDFMARK_PASSWORD > keyring.
func resolvePassword(cmd *cobra.Command, flagValue, path string) (string, string) {
	if flagChanged(cmd, "password") {
		return flagValue, passwordSourceFlag
	}
	if v := envGet(passwordEnv); v != "" {
		return v, passwordSourceEnv
	}

	backend := ""
	if activeConfig != nil {
		backend = activeConfig.KeyringBackend
	}
	store, err := openSecretsStore(backend)
	if err != nil {
		loggerFromContext(cmd.Context()).Debug("keyring unavailable", "err", err)
		return "", passwordSourceNone
	}
	if pw, err := store.Get(passwordKey(path)); err == nil {
		return pw, passwordSourceKeyring
	}
	return "", passwordSourceNone
}

// openInputDocument opens path with the resolved password. When the
// document turns out to need a password nobody supplied and stdin is a
// terminal, the user is prompted once.
func openInputDocument(cmd *cobra.Command, path, passwordFlag string) (document.Document, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	password, source := resolvePassword(cmd, passwordFlag, path)
	logger.Debug("opening document", "path", path, "password_source", source)

	doc, err := openDocument(path, password, logger)
	if err == nil {
		return doc, nil
	}

	var pwErr document.PasswordError
	if !errors.As(err, &pwErr) || !pwErr.Missing || !stdinIsTerminal(stdinFromContext(ctx)) {
		return nil, err
	}

	password, promptErr := promptSecret(ctx, fmt.Sprintf("Password for %s: ", filepath.Base(path)))
	if promptErr != nil {
		return nil, fmt.Errorf("read password: %w", promptErr)
	}
	logger.Debug("opening document", "path", path, "password_source", passwordSourcePrompt)
	return openDocument(path, password, logger)
}

// loadToc reads, parses and offsets a TOC source.
func loadToc(ctx context.Context, source string, offset int) (*toc.Toc, error) {
	text, err := readInputSource(source, stdinFromContext(ctx))
	if err != nil {
		return nil, err
	}
	t, err := toc.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(source), err)
	}
	t.Offset(offset)
	loggerFromContext(ctx).Debug("parsed toc", "source", displayName(source), "entries", t.Len(), "offset", offset)
	return t, nil
}

// loadForest reads a TOC source and builds its bookmark tree.
func loadForest(ctx context.Context, source string, offset int) (*toc.Toc, outline.Forest, error) {
	t, err := loadToc(ctx, source, offset)
	if err != nil {
		return nil, nil, err
	}
	forest, err := outline.Build(t.Entries)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", displayName(source), err)
	}
	return t, forest, nil
}

func displayName(source string) string {
	if strings.TrimSpace(source) == "-" {
		return "<stdin>"
	}
	return source
}
