package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/salmonumbrella/pdfmark/internal/output"
)

// withTestContext points the output helpers at a fresh buffer using format
// and returns it. State is restored when the test ends.
func withTestContext(t *testing.T, format output.Format) *bytes.Buffer {
	t.Helper()
	out := &bytes.Buffer{}

	ctx := withIO(context.Background(), &bytes.Buffer{}, out, &bytes.Buffer{})
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithQuiet(ctx, true)

	prevCtx := rootCmd.Context()
	prevType, prevFmt := outputType, outputFmt
	rootCmd.SetContext(ctx)
	outputType, outputFmt = format, string(format)

	t.Cleanup(func() {
		outputType, outputFmt = prevType, prevFmt
		if prevCtx == nil {
			prevCtx = context.Background()
		}
		rootCmd.SetContext(prevCtx)
	})
	return out
}
