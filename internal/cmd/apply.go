package cmd

import "github.com/spf13/cobra"

var (
	applyInput    string
	applyToc      string
	applyOutput   string
	applyOffset   int
	applyPassword string
	applyForce    bool
	applyWrite    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Install a TOC file as the bookmarks of a PDF",
	Long: `Parse a TOC file, build the bookmark tree and write a copy of the input
PDF carrying those bookmarks.

The input file is never modified. If the PDF already has bookmarks the
command fails unless --force is given, in which case they are replaced.

Examples:
  pdfmark apply -i book.pdf -t toc.txt -o book-marked.pdf
  pdfmark apply -i scan.pdf -t toc.txt -o out.pdf --offset 12
  cat toc.txt | pdfmark apply -i book.pdf -t - -o out.pdf --force`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

type applyResult struct {
	Status   string `json:"status" yaml:"status"`
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output" yaml:"output"`
	Entries  int    `json:"entries" yaml:"entries"`
	Roots    int    `json:"roots" yaml:"roots"`
	Offset   int    `json:"offset" yaml:"offset"`
	Replaced bool   `json:"replaced" yaml:"replaced"`
}

func init() {
	applyCmd.Flags().StringVarP(&applyInput, "input", "i", "", "Input PDF")
	applyCmd.Flags().StringVarP(&applyToc, "toc", "t", "", "TOC file (use - for stdin)")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Output PDF")
	applyCmd.Flags().IntVar(&applyOffset, "offset", 0, "Add N to every page number (default: config page_offset)")
	applyCmd.Flags().StringVarP(&applyPassword, "password", "p", "", "Password for an encrypted input PDF")
	applyCmd.Flags().BoolVarP(&applyForce, "force", "f", false, "Replace existing bookmarks")
	applyCmd.Flags().BoolVarP(&applyWrite, "write", "w", false, "Overwrite the output file if it exists")
	_ = applyCmd.MarkFlagRequired("input")
	_ = applyCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	source, err := tocSource(applyToc, stdinFromContext(ctx))
	if err != nil {
		return err
	}
	offset := effectiveOffset(cmd, applyOffset)
	t, forest, err := loadForest(ctx, source, offset)
	if err != nil {
		return err
	}

	doc, err := openInputDocument(cmd, applyInput, applyPassword)
	if err != nil {
		return err
	}

	replaced := false
	if applyForce {
		has, err := doc.HasOutline()
		if err != nil {
			return err
		}
		if has {
			if err := doc.DeleteOutline(); err != nil {
				return err
			}
			replaced = true
			logger.Debug("removed existing bookmarks", "path", applyInput)
		}
	}

	if err := doc.SetOutline(forest); err != nil {
		return err
	}
	if err := doc.Save(applyOutput, effectiveOverwrite(cmd, applyWrite)); err != nil {
		return err
	}

	result := applyResult{
		Status:   "applied",
		Input:    applyInput,
		Output:   applyOutput,
		Entries:  t.Len(),
		Roots:    len(forest),
		Offset:   offset,
		Replaced: replaced,
	}
	if structuredOutputRequested() {
		return printStructured(result)
	}

	printStatus(ctx, "Applied %d bookmarks to %s", result.Entries, result.Output)
	return nil
}
