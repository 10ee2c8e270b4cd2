package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/output"
)

var (
	clearInput    string
	clearOutput   string
	clearPassword string
	clearWrite    bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all bookmarks from a PDF",
	Long: `Write a copy of the input PDF without any bookmarks.

Clearing a file in place (output same as input) needs --yes.

Examples:
  pdfmark clear -i book.pdf -o book-clean.pdf
  pdfmark clear -i book.pdf -o book.pdf -w --yes`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

type clearResult struct {
	Status  string `json:"status" yaml:"status"`
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	Removed int    `json:"removed" yaml:"removed"`
}

func init() {
	clearCmd.Flags().StringVarP(&clearInput, "input", "i", "", "Input PDF")
	clearCmd.Flags().StringVarP(&clearOutput, "output", "o", "", "Output PDF")
	clearCmd.Flags().StringVarP(&clearPassword, "password", "p", "", "Password for an encrypted input PDF")
	clearCmd.Flags().BoolVarP(&clearWrite, "write", "w", false, "Overwrite the output file if it exists")
	_ = clearCmd.MarkFlagRequired("input")
	_ = clearCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if samePath(clearInput, clearOutput) && !output.YesFromContext(ctx) {
		errOut := stderrFromContext(ctx)
		_, _ = fmt.Fprintf(errOut, "This removes every bookmark from %s in place.\n", clearInput)
		_, _ = fmt.Fprintf(errOut, "\nThis action cannot be undone. Use --yes to confirm.\n")
		return nil
	}

	doc, err := openInputDocument(cmd, clearInput, clearPassword)
	if err != nil {
		return err
	}
	existing, err := doc.Outline()
	if err != nil {
		return err
	}
	if err := doc.DeleteOutline(); err != nil {
		return err
	}
	if err := doc.Save(clearOutput, effectiveOverwrite(cmd, clearWrite)); err != nil {
		return err
	}

	result := clearResult{
		Status:  "cleared",
		Input:   clearInput,
		Output:  clearOutput,
		Removed: existing.Len(),
	}
	if structuredOutputRequested() {
		return printStructured(result)
	}

	printStatus(ctx, "Removed %d bookmarks; wrote %s", result.Removed, result.Output)
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
