package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func friendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage friends and friend requests",
	}
	cmd.AddCommand(friendsListCmd(), friendsRequestsCmd(), friendsAddCmd(),
		friendsAcceptCmd(), friendsDeclineCmd(), friendsRmCmd())
	return cmd
}

func friendsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List confirmed friends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			friends, err := wire.Friends.Friends(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range friends {
				fmt.Printf("%-8s %s <%s>\n", u.ID, u.Name, u.Email)
			}
			return nil
		},
	}
}

func friendsRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List pending friend requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := wire.Friends.Requests(cmd.Context())
			if err != nil {
				return err
			}
			me := wire.Session.UserID()
			for _, req := range requests {
				if req.To.ID == me {
					fmt.Printf("%-8s from %s (%s)\n", req.ID, req.From.Name, req.From.ID)
				} else {
					fmt.Printf("%-8s to %s (%s), awaiting reply\n", req.ID, req.To.Name, req.To.ID)
				}
			}
			return nil
		},
	}
}

func friendsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <user-id>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := wire.Friends.Send(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Request %s sent to %s\n", req.ID, req.To.Name)
			return nil
		},
	}
}

func friendsAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <request-id>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Friends.Accept(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Accepted")
			return nil
		},
	}
}

func friendsDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <request-id>",
		Short: "Decline a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Friends.Decline(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Declined")
			return nil
		},
	}
}

func friendsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <user-id>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Friends.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Removed")
			return nil
		},
	}
}
