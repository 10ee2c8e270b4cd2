package cmd

import (
	"log/slog"
	"os"

	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/secrets"
)

var (
	openSecretsStore = func(backend string) (secrets.Store, error) {
		store, err := secrets.Open(secrets.ResolveBackend(backend))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	openDocument = func(path, password string, logger *slog.Logger) (document.Document, error) {
		doc, err := document.Open(path, document.WithPassword(password), document.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	envGet          = os.Getenv
	stdinIsTerminal = isInputTerminal
)
