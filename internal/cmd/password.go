package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/pdfmark/internal/secrets"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage stored PDF passwords",
	Long: `Manage passwords for encrypted PDFs.

Passwords are stored in your system keychain (macOS Keychain, Windows
Credential Manager, Secret Service) or an encrypted file, keyed by the
PDF's file name. When a document needs a password and none is given with
--password or PDFMARK_PASSWORD, the stored one is used.

Examples:
  pdfmark password set report.pdf
  echo secret | pdfmark password set report.pdf
  pdfmark password list
  pdfmark password delete report.pdf`,
}

var passwordSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Store the password for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPasswordSet,
}

var passwordDeleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Remove the stored password for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPasswordDelete,
}

var passwordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List PDFs with a stored password",
	Args:  cobra.NoArgs,
	RunE:  runPasswordList,
}

func init() {
	passwordCmd.AddCommand(passwordSetCmd)
	passwordCmd.AddCommand(passwordDeleteCmd)
	passwordCmd.AddCommand(passwordListCmd)

	rootCmd.AddCommand(passwordCmd)
}

func openConfiguredStore() (secrets.Store, error) {
	backend := ""
	if activeConfig != nil {
		backend = activeConfig.KeyringBackend
	}
	store, err := openSecretsStore(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, nil
}

func runPasswordSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := passwordKey(args[0])

	store, err := openConfiguredStore()
	if err != nil {
		return err
	}

	password, err := promptSecret(ctx, fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if err := store.Set(name, password); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status": "stored",
			"name":   name,
		})
	}
	printStatus(ctx, "Stored password for %s", name)
	return nil
}

func runPasswordDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := passwordKey(args[0])

	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	if err := store.Delete(name); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove password: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status": "deleted",
			"name":   name,
		})
	}
	printStatus(ctx, "Removed password for %s", name)
	return nil
}

func runPasswordList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	names, err := store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list passwords: %w", err)
	}
	if names == nil {
		names = []string{}
	}

	if structuredOutputRequested() {
		return printStructured(names)
	}

	out := stdoutFromContext(ctx)
	if len(names) == 0 {
		_, _ = fmt.Fprintln(out, styler(ctx).Dim("No stored passwords."))
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok {
		if term.IsTerminal(int(file.Fd())) {
			password, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(stderrFromContext(ctx))
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fall back to regular input for non-terminal (e.g., piped input)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
