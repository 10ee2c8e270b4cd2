package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	validateToc    string
	validateOffset int
	validateWatch  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a TOC file without touching any PDF",
	Long: `Parse a TOC file and build its bookmark tree, reporting the first
syntax or structure problem with its line number.

With --watch the file is checked again every time it is saved, until
interrupted.

Examples:
  pdfmark validate -t toc.txt
  pdfmark validate -t toc.txt --watch
  pdfmark validate -t - < toc.txt`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

type validateResult struct {
	Source   string `json:"source" yaml:"source"`
	Entries  int    `json:"entries" yaml:"entries"`
	Roots    int    `json:"roots" yaml:"roots"`
	MaxDepth int    `json:"max_depth" yaml:"max_depth"`
}

func (r validateResult) String() string {
	if r.Entries == 0 {
		return fmt.Sprintf("%s: ok (empty)", r.Source)
	}
	return fmt.Sprintf("%s: ok, %d entries, %d top-level, max depth %d", r.Source, r.Entries, r.Roots, r.MaxDepth)
}

func init() {
	validateCmd.Flags().StringVarP(&validateToc, "toc", "t", "", "TOC file (use - for stdin)")
	validateCmd.Flags().IntVar(&validateOffset, "offset", 0, "Add N to every page number before checking (default: config page_offset)")
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Re-check the file whenever it changes")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source, err := tocSource(validateToc, stdinFromContext(ctx))
	if err != nil {
		return err
	}
	offset := effectiveOffset(cmd, validateOffset)

	if !validateWatch {
		result, err := checkToc(ctx, source, offset)
		if err != nil {
			return err
		}
		return printValidateResult(ctx, result)
	}

	if strings.TrimSpace(source) == "-" {
		return fmt.Errorf("--watch needs a TOC file, not stdin")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return watchToc(ctx, source, offset, func(result validateResult, err error) {
		if err != nil {
			printCommandError(ctx, err)
			return
		}
		if perr := printValidateResult(ctx, result); perr != nil {
			printCommandError(ctx, perr)
		}
	})
}

func printValidateResult(ctx context.Context, result validateResult) error {
	if formattedOutputRequested() {
		return printStructured(result)
	}
	_, err := fmt.Fprintln(stdoutFromContext(ctx), styler(ctx).Success(result.String()))
	return err
}

// checkToc parses and builds source, returning its shape.
func checkToc(ctx context.Context, source string, offset int) (validateResult, error) {
	t, forest, err := loadForest(ctx, source, offset)
	if err != nil {
		return validateResult{}, err
	}
	return validateResult{
		Source:   displayName(source),
		Entries:  t.Len(),
		Roots:    len(forest),
		MaxDepth: forest.MaxDepth(),
	}, nil
}

// watchToc checks path once, then again after every write to it, calling
// report each time. It returns when ctx is done.
//
// The parent directory is watched rather than the file so that editors
// which save by renaming a temporary file are still seen.
func watchToc(ctx context.Context, path string, offset int, report func(validateResult, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("watching toc", "path", abs)

	report(checkToc(ctx, path, offset))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			report(checkToc(ctx, path, offset))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
