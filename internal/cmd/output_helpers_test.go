package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/pdfmark/internal/output"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

func TestStructuredOutputRequested(t *testing.T) {
	tests := []struct {
		format        output.Format
		want          bool
		wantFormatted bool
	}{
		{output.FormatText, false, false},
		{output.FormatJSON, true, true},
		{output.FormatNDJSON, true, true},
		{output.FormatYAML, true, true},
		{output.FormatTable, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			withTestContext(t, tt.format)

			if got := structuredOutputRequested(); got != tt.want {
				t.Errorf("structuredOutputRequested() = %v, want %v", got, tt.want)
			}
			if got := formattedOutputRequested(); got != tt.wantFormatted {
				t.Errorf("formattedOutputRequested() = %v, want %v", got, tt.wantFormatted)
			}
		})
	}
}

func TestPrintStructured_JSON(t *testing.T) {
	out := withTestContext(t, output.FormatJSON)

	if err := printStructured(map[string]string{"key": "value"}); err != nil {
		t.Fatalf("printStructured() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput was: %s", err, out.String())
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got key=%q", result["key"])
	}
}

func TestPrintStructured_YAMLEntries(t *testing.T) {
	out := withTestContext(t, output.FormatYAML)

	if err := printStructured(entryList{{Depth: 0, Page: 1, Title: "A"}}); err != nil {
		t.Fatalf("printStructured() error = %v", err)
	}

	var result []toc.Entry
	if err := yaml.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse YAML output: %v\nOutput was: %s", err, out.String())
	}
	if len(result) != 1 || result[0].Title != "A" || result[0].Page != 1 {
		t.Errorf("unexpected entries: %+v", result)
	}
}

func TestEntryListTable(t *testing.T) {
	out := withTestContext(t, output.FormatTable)

	l := entryList{{Depth: 0, Page: 1, Title: "Intro"}, {Depth: 1, Page: 12, Title: "Part"}}
	if err := printStructured(l); err != nil {
		t.Fatalf("printStructured() error = %v", err)
	}
	want := "DEPTH  PAGE  TITLE\n0      1     Intro\n1      12    Part\n"
	if out.String() != want {
		t.Errorf("table output = %q, want %q", out.String(), want)
	}
	if l.String() != "1 Intro\n+12 Part" {
		t.Errorf("String() = %q", l.String())
	}
}

func TestPrintStatusQuiet(t *testing.T) {
	out := withTestContext(t, output.FormatText)

	ctx := output.WithQuiet(currentContext(), false)
	printStatus(ctx, "wrote %s", "a.pdf")
	if out.String() != "wrote a.pdf\n" {
		t.Errorf("status = %q", out.String())
	}

	out.Reset()
	printStatus(output.WithQuiet(ctx, true), "hidden")
	if out.Len() != 0 {
		t.Errorf("quiet status printed %q", out.String())
	}
}

func TestCurrentContext_NilRootCmd(t *testing.T) {
	prevRootCmd := rootCmd
	rootCmd = nil
	defer func() { rootCmd = prevRootCmd }()

	if ctx := currentContext(); ctx != context.Background() {
		t.Error("expected context.Background() when rootCmd is nil")
	}
}
