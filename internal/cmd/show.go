package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/output"
)

var (
	showToc      string
	showInput    string
	showOffset   int
	showPassword string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a bookmark tree",
	Long: `Display the bookmark tree of a TOC file (-t) or of a PDF (-i).

Text output draws the tree with 1-based page numbers; bookmarks without a
destination show "-". Structured formats print the nested tree as stored,
with 0-based pages and -1 for no destination. --format table prints the
flattened TOC entries.

Examples:
  pdfmark show -t toc.txt
  pdfmark show -i book.pdf
  pdfmark show -i book.pdf --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showToc, "toc", "t", "", "TOC file (use - for stdin)")
	showCmd.Flags().StringVarP(&showInput, "input", "i", "", "Input PDF")
	showCmd.Flags().IntVar(&showOffset, "offset", 0, "Add N to every TOC page number (default: config page_offset)")
	showCmd.Flags().StringVarP(&showPassword, "password", "p", "", "Password for an encrypted input PDF")
	showCmd.MarkFlagsMutuallyExclusive("toc", "input")
	showCmd.MarkFlagsOneRequired("toc", "input")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var forest outline.Forest
	if showInput != "" {
		doc, err := openInputDocument(cmd, showInput, showPassword)
		if err != nil {
			return err
		}
		if forest, err = doc.Outline(); err != nil {
			return err
		}
	} else {
		var err error
		if _, forest, err = loadForest(ctx, showToc, effectiveOffset(cmd, showOffset)); err != nil {
			return err
		}
	}

	switch {
	case GetOutputFormat() == output.FormatTable:
		return printStructured(entryList(outline.Flatten(forest)))
	case structuredOutputRequested():
		return printStructured(forest)
	}

	out := stdoutFromContext(ctx)
	if len(forest) == 0 {
		_, err := fmt.Fprintln(out, styler(ctx).Dim("(no bookmarks)"))
		return err
	}
	return output.WriteTree(out, forest, styler(ctx))
}
