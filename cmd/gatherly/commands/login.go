package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptPassword reads a secret without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	secret := string(b)
	for i := range b {
		b[i] = 0
	}
	return secret, nil
}

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the refresh token in the local vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("vault passphrase required (-p)")
			}
			secret := password
			if secret == "" {
				var err error
				if secret, err = promptPassword("Password"); err != nil {
					return err
				}
			}

			user, err := wire.Auth.Login(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (supply to avoid prompt)")
	return cmd
}
