package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"gatherly/internal/app"
	"gatherly/internal/store"
)

var (
	home       string
	apiURL     string
	passphrase string
	verbose    bool

	wire *app.Wire
)

// commands that replace the vault anyway, so a forgotten passphrase must not
// lock the user out of them.
var vaultResetOK = map[string]bool{"login": true, "register": true}

func Execute() error {
	root := &cobra.Command{
		Use:           "gatherly",
		Short:         "Plan events, RSVP, and share photos from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if apiURL != "" {
				cfg.APIBaseURL = apiURL
			}
			if verbose {
				cfg.LogLevel = "debug"
			}

			wire, err = app.NewWire(cfg, passphrase)
			if errors.Is(err, store.ErrWrongPassphrase) && passphrase != "" && vaultResetOK[cmd.Name()] {
				// A new login supersedes whatever the old vault held.
				if err := store.NewFileVault(cfg.Home).Clear(); err != nil {
					return err
				}
				wire, err = app.NewWire(cfg, passphrase)
			}
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.gatherly)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the local credential vault")
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default from GATHERLY_API_URL)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		profileCmd(),
		eventsCmd(),
		rsvpCmd(),
		photosCmd(),
		friendsCmd(),
		notificationsCmd(),
	)
	return root.Execute()
}
