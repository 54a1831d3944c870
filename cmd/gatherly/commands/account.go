package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"gatherly/internal/domain"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear the local vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := wire.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s> (id %s)\n", user.Name, user.Email, user.ID)
			if user.Bio != nil {
				fmt.Println(*user.Bio)
			}
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	var name, bio, avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the logged-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.ProfilePatch{}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("bio") {
				patch.Bio = &bio
			}
			if cmd.Flags().Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			if patch.Name == nil && patch.Bio == nil && patch.AvatarURL == nil {
				return fmt.Errorf("nothing to update: pass --name, --bio, or --avatar")
			}

			user, err := wire.Auth.UpdateProfile(cmd.Context(), patch)
			if err != nil {
				return err
			}
			fmt.Printf("Updated profile for %s\n", user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	return cmd
}
