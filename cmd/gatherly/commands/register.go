package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <name> <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("vault passphrase required (-p)")
			}
			secret := password
			if secret == "" {
				var err error
				if secret, err = promptPassword("Choose a password"); err != nil {
					return err
				}
			}

			user, err := wire.Auth.Register(cmd.Context(), args[0], args[1], secret)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s! Your user ID is %s\n", user.Name, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (supply to avoid prompt)")
	return cmd
}
