package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readInputSource reads content from a file path or stdin when source is
// "-". The content is returned untouched: TOC text is whitespace sensitive.
func readInputSource(source string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", fmt.Errorf("empty input source")
	}

	var r io.Reader
	if trimmed == "-" {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(trimmed)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return string(data), nil
}

// inputHasData reports whether r is piped or redirected rather than an
// interactive terminal.
func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	if file, ok := r.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	return true
}

// tocSource returns the --toc value, defaulting to stdin when it is piped.
func tocSource(flagValue string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if inputHasData(stdin) {
		return "-", nil
	}
	return "", fmt.Errorf("--toc is required (use - to read from stdin)")
}

// tocFileContent renders TOC text for writing to a file: one entry per
// line, newline terminated.
func tocFileContent(rendered string) []byte {
	if rendered == "" {
		return nil
	}
	return []byte(rendered + "\n")
}
