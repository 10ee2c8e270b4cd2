package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/pdfmark/internal/config"
	"github.com/salmonumbrella/pdfmark/internal/output"
	"github.com/salmonumbrella/pdfmark/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/pdfmark/config.yaml
(or the file named by PDFMARK_CONFIG / --config).

You can view, set, or unset config keys such as output_format,
keyring_backend, debug, page_offset and overwrite_output.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		if structuredOutputRequested() {
			return printStructured(configOutput(cfg))
		}

		out := stdoutFromContext(cmd.Context())
		fmt.Fprintln(out, "Config:")
		fmt.Fprintf(out, "  output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "  keyring_backend: %s\n", cfg.KeyringBackend)
		fmt.Fprintf(out, "  debug: %t\n", cfg.Debug)
		fmt.Fprintf(out, "  page_offset: %d\n", cfg.PageOffset)
		fmt.Fprintf(out, "  overwrite_output: %t\n", cfg.OverwriteOutput)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := supportedConfigKeys()
		sort.Strings(keys)

		if structuredOutputRequested() {
			return printStructured(keys)
		}

		out := stdoutFromContext(cmd.Context())
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(map[string]string{"path": path})
		}
		_, err = fmt.Fprintln(stdoutFromContext(cmd.Context()), path)
		return err
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func supportedConfigKeys() []string {
	return []string{
		"output_format",
		"keyring_backend",
		"debug",
		"page_offset",
		"overwrite_output",
	}
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "output_format":
		format, err := output.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.OutputFormat = string(format)
	case "keyring_backend":
		backend := strings.ToLower(value)
		if err := secrets.ValidateBackend(backend); err != nil {
			return err
		}
		cfg.KeyringBackend = backend
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q (expected true|false)", key, value)
		}
		cfg.Debug = b
	case "page_offset":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q (expected an integer)", key, value)
		}
		cfg.PageOffset = n
	case "overwrite_output":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q (expected true|false)", key, value)
		}
		cfg.OverwriteOutput = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	switch key {
	case "output_format":
		cfg.OutputFormat = ""
	case "keyring_backend":
		cfg.KeyringBackend = ""
	case "debug":
		cfg.Debug = false
	case "page_offset":
		cfg.PageOffset = 0
	case "overwrite_output":
		cfg.OverwriteOutput = false
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}

	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := clearConfigValue(cfg, key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status": "unset",
			"key":    key,
		})
	}

	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Unset %s\n", key)
	return nil
}

func configOutput(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"output_format":    cfg.OutputFormat,
		"keyring_backend":  cfg.KeyringBackend,
		"debug":            cfg.Debug,
		"page_offset":      cfg.PageOffset,
		"overwrite_output": cfg.OverwriteOutput,
	}
}
