package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/pdfmark/internal/config"
	"github.com/salmonumbrella/pdfmark/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(versionTemplate())
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	debug       bool
	configFile  string
	queryExpr   string
	queryFile   string
	errorFmt    string
	quietFlag   bool
	yesFlag     bool
	resultLimit int
)

// activeConfig is the config loaded for the running command. It is never
// nil once PersistentPreRunE has run.
var activeConfig = &config.Config{}

var rootCmd = &cobra.Command{
	Use:   "pdfmark",
	Short: "Edit PDF bookmarks as plain text",
	Long: `pdfmark converts between PDF bookmarks and a plain-text table of contents.

Each TOC line is a bookmark: leading '+' characters give the nesting depth,
followed by the 1-based page number, one space and the title.

  1 Preface
  3 Chapter 1
  +4 Section 1.1
  ++5 Detail
  9 Chapter 2

Environment Variables:
  PDFMARK_PASSWORD          Password for encrypted input PDFs
  PDFMARK_KEYRING_BACKEND   Keyring backend (auto|keychain|file)
  PDFMARK_KEYRING_PASSWORD  Password for the file keyring backend
  PDFMARK_CONFIG            Config file location`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		skipConfigLoad := cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config")
		cfg := &config.Config{}
		if !skipConfigLoad {
			loadedCfg, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loadedCfg
		}
		activeConfig = cfg

		// Output format selection: --format > config > default
		formatStr := outputFmt
		if !flagChanged(cmd, "format") && strings.TrimSpace(cfg.OutputFormat) != "" {
			formatStr = strings.TrimSpace(cfg.OutputFormat)
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		// jq query
		if queryExpr != "" && queryFile != "" {
			return fmt.Errorf("use only one of --query or --query-file")
		}
		if queryFile != "" {
			loaded, err := readInputSource(queryFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			queryExpr = strings.TrimSpace(loaded)
		}

		// Default quiet mode for non-interactive structured output
		if !flagChanged(cmd, "quiet") && !isTerminal(cmd.OutOrStdout()) && output.IsStructured(outputType) {
			quietFlag = true
		}

		level := slog.LevelWarn
		if debug || cfg.Debug {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = withLogger(ctx, logger)
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithYes(ctx, yesFlag)
		ctx = output.WithLimit(ctx, resultLimit)
		ctx = output.WithQuiet(ctx, quietFlag)
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)
		cmd.Root().SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}

		if !skipConfigLoad {
			path := configFile
			if strings.TrimSpace(path) == "" {
				path, _ = config.DefaultConfigPath()
			}
			logger.Debug("loaded config", "path", path, "format", GetOutputFormatString())
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(currentContext(), err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

// GetOutputFormatString returns the output format as a string.
func GetOutputFormatString() string {
	if outputType != "" {
		return string(outputType)
	}
	return outputFmt
}

func versionTemplate() string {
	return fmt.Sprintf("pdfmark version %s (commit: %s, built: %s)\n", version, commit, date)
}

func init() {
	rootCmd.SetVersionTemplate(versionTemplate())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&outputFmt, "format", "text", "Output format (text|json|ndjson|table|yaml)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Skip confirmation prompts (for automation)")
	rootCmd.PersistentFlags().IntVar(&resultLimit, "result-limit", 0, "Limit number of results in output (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/pdfmark/config.yaml)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func isInputTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
