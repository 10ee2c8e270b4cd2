package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/pdfmark/internal/document"
	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/output"
	"github.com/salmonumbrella/pdfmark/internal/secrets"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	errOut := stderrFromContext(ctx)
	st := output.Styler{Color: isTerminal(errOut)}
	_, _ = fmt.Fprintln(errOut, st.Error("error:"), err)
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":  err.Error(),
		"category": "system",
		"type":     "error",
	}

	var syntaxErr *toc.SyntaxError
	if errors.As(err, &syntaxErr) {
		errMap["type"] = "syntax"
		errMap["category"] = "user"
		errMap["line"] = syntaxErr.Line
		errMap["column"] = syntaxErr.Column
	}

	var structErr *outline.StructureError
	if errors.As(err, &structErr) {
		errMap["type"] = "structure"
		errMap["category"] = "user"
		errMap["line"] = structErr.Line()
		switch {
		case errors.Is(err, outline.ErrRootDepth):
			errMap["subtype"] = "root_depth"
		case errors.Is(err, outline.ErrDepthJump):
			errMap["subtype"] = "depth_jump"
		case errors.Is(err, outline.ErrInvalidPage):
			errMap["subtype"] = "invalid_page"
		case errors.Is(err, outline.ErrNegativeDepth):
			errMap["subtype"] = "negative_depth"
		}
	}

	var pwErr document.PasswordError
	if errors.As(err, &pwErr) {
		errMap["type"] = "password"
		errMap["category"] = "user"
		if pwErr.Missing {
			errMap["subtype"] = "missing"
		} else {
			errMap["subtype"] = "invalid"
		}
	}

	var existsErr document.OutlineExistsError
	if errors.As(err, &existsErr) {
		errMap["type"] = "outline_exists"
		errMap["category"] = "user"
	}

	var outErr document.OutputExistsError
	if errors.As(err, &outErr) {
		errMap["type"] = "output_exists"
		errMap["category"] = "user"
	}

	if errors.Is(err, secrets.ErrNotFound) {
		errMap["type"] = "not_found"
		errMap["category"] = "user"
	}

	return map[string]interface{}{"error": errMap}
}
