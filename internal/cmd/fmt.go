package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/outline"
	"github.com/salmonumbrella/pdfmark/internal/toc"
)

var (
	fmtToc    string
	fmtOffset int
	fmtWrite  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Normalise a TOC file",
	Long: `Check a TOC file and print it in canonical form: "\n" line endings,
no leading zeros in page numbers and a final newline. --offset shifts every
page number. With -w the file is rewritten in place.

Examples:
  pdfmark fmt -t toc.txt
  pdfmark fmt -t toc.txt --offset 2 -w`,
	Args: cobra.NoArgs,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().StringVarP(&fmtToc, "toc", "t", "", "TOC file (use - for stdin)")
	fmtCmd.Flags().IntVar(&fmtOffset, "offset", 0, "Add N to every page number")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Rewrite the file in place")

	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source, err := tocSource(fmtToc, stdinFromContext(ctx))
	if err != nil {
		return err
	}
	_, forest, err := loadForest(ctx, source, fmtOffset)
	if err != nil {
		return err
	}
	content := tocFileContent(toc.Render(outline.Flatten(forest)))

	if !fmtWrite {
		_, err := stdoutFromContext(ctx).Write(content)
		return err
	}

	if strings.TrimSpace(source) == "-" {
		return fmt.Errorf("-w needs a TOC file, not stdin")
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(source); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(source, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", source, err)
	}
	printStatus(ctx, "Formatted %s", source)
	return nil
}
