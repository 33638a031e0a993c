package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-automission-monitor/internal/core/auth"
)

var hashCmd = &cobra.Command{
	Use:   "hash-password [secret]",
	Short: "Print a bcrypt hash for auth.password_hash",
	Long: `Hashes a dashboard secret so the config can carry the hash instead of the
plaintext. Reads the secret from the terminal when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	var secret string
	if len(args) == 1 {
		secret = args[0]
	} else {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("pass the secret as an argument when stdin is not a terminal")
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Secret: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		secret = string(raw)
	}
	if secret == "" {
		return errors.New("secret must not be empty")
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
