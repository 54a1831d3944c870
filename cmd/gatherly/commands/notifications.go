package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gatherly/internal/domain"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Read the notification inbox",
	}
	cmd.AddCommand(notificationsListCmd(), notificationsReadCmd(), notificationsWatchCmd())
	return cmd
}

func notificationsListCmd() *cobra.Command {
	var page, perPage int
	var unread bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := wire.Notifications.List(cmd.Context(), page, perPage)
			if err != nil {
				return err
			}
			for _, n := range list.Items {
				if unread && n.Read {
					continue
				}
				printNotification(n)
			}
			if list.Page.HasMore {
				fmt.Printf("-- page %d, %d total; --page %d for more\n",
					list.Page.Page, list.Page.TotalItems, list.Page.Page+1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "notifications per page")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread")
	return cmd
}

func notificationsReadCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark notifications as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return wire.Notifications.MarkAllRead(cmd.Context())
			}
			if len(args) != 1 {
				return fmt.Errorf("pass a notification id or --all")
			}
			return wire.Notifications.MarkRead(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "mark everything read")
	return cmd
}

// watch tails the live feed until interrupted. It is also where the
// session-expiry broadcast pays off: a long-running watcher finds out
// immediately instead of on its next request.
func notificationsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			expired := wire.Session.Expiry()
			go func() {
				<-expired
				fmt.Println("session expired: log in again")
				cancel()
			}()

			return wire.Notifications.Stream(ctx, printNotification)
		},
	}
}

func printNotification(n domain.Notification) {
	marker := " "
	if !n.Read {
		marker = "*"
	}
	fmt.Printf("%s %-8s %-15s %s\n", marker, n.ID, n.Kind, n.Message)
}
