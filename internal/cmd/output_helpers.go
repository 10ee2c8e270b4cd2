package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/salmonumbrella/pdfmark/internal/output"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

// formattedOutputRequested reports whether results go through the printer
// rather than plain text (structured formats and table).
func formattedOutputRequested() bool {
	return GetOutputFormat() != output.FormatText
}

func printStructured(data interface{}) error {
	ctx := currentContext()
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

func currentContext() context.Context {
	if rootCmd != nil && rootCmd.Context() != nil {
		return rootCmd.Context()
	}
	return context.Background()
}

// styler colours text output when stdout is a terminal.
func styler(ctx context.Context) output.Styler {
	return output.Styler{Color: isTerminal(stdoutFromContext(ctx))}
}

// printStatus writes a one-line success message unless --quiet is set.
func printStatus(ctx context.Context, format string, args ...interface{}) {
	if output.QuietFromContext(ctx) {
		return
	}
	_, _ = fmt.Fprintln(stdoutFromContext(ctx), styler(ctx).Success(fmt.Sprintf(format, args...)))
}

// entryList is a flat TOC laid out for --format table.
type entryList []toc.Entry

func (l entryList) TableHeaders() []string { return []string{"DEPTH", "PAGE", "TITLE"} }

func (l entryList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{strconv.Itoa(e.Depth), strconv.Itoa(e.Page), e.Title})
	}
	return rows
}

func (l entryList) String() string { return toc.Render(l) }
