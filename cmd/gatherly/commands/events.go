package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gatherly/internal/domain"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and manage events",
	}
	cmd.AddCommand(eventsListCmd(), eventsShowCmd(), eventsCreateCmd(), eventsEditCmd(), eventsCancelCmd(), eventsAttendeesCmd())
	return cmd
}

func eventsListCmd() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := wire.Events.List(cmd.Context(), page, perPage)
			if err != nil {
				return err
			}
			for _, ev := range list.Items {
				printEventLine(ev)
			}
			if list.Page.HasMore {
				fmt.Printf("-- page %d, %d total; --page %d for more\n",
					list.Page.Page, list.Page.TotalItems, list.Page.Page+1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "events per page")
	return cmd
}

func eventsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := wire.Events.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEventLine(ev)
			if ev.Description != nil {
				fmt.Println(*ev.Description)
			}
			if ev.Location != nil {
				fmt.Println("at", *ev.Location)
			}
			fmt.Printf("going %d, maybe %d, my rsvp: %s\n", ev.GoingCount, ev.MaybeCount, ev.MyRSVP)
			return nil
		},
	}
}

func eventsCreateCmd() *cobra.Command {
	var title, at, ends, location, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Host a new event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at must be RFC 3339, e.g. 2026-09-01T19:00:00Z: %w", err)
			}
			ev := domain.NewEvent{Title: title, StartsAt: startsAt.Format(time.RFC3339)}
			if location != "" {
				ev.Location = &location
			}
			if description != "" {
				ev.Description = &description
			}
			if ends != "" {
				endsAt, err := time.Parse(time.RFC3339, ends)
				if err != nil {
					return fmt.Errorf("--ends must be RFC 3339: %w", err)
				}
				s := endsAt.Format(time.RFC3339)
				ev.EndsAt = &s
			}

			created, err := wire.Events.Create(cmd.Context(), ev)
			if err != nil {
				return err
			}
			fmt.Printf("Created event %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&at, "at", "", "start time, RFC 3339")
	cmd.Flags().StringVar(&ends, "ends", "", "end time, RFC 3339")
	cmd.Flags().StringVar(&location, "location", "", "where")
	cmd.Flags().StringVar(&description, "description", "", "details")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func eventsEditCmd() *cobra.Command {
	var title, at, ends, location, description string

	cmd := &cobra.Command{
		Use:   "edit <event-id>",
		Short: "Edit an event you host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.EventPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("at") {
				patch.StartsAt = &at
			}
			if cmd.Flags().Changed("ends") {
				patch.EndsAt = &ends
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}

			ev, err := wire.Events.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", ev.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&at, "at", "", "start time, RFC 3339")
	cmd.Flags().StringVar(&ends, "ends", "", "end time, RFC 3339")
	cmd.Flags().StringVar(&location, "location", "", "where")
	cmd.Flags().StringVar(&description, "description", "", "details")
	return cmd
}

func eventsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <event-id>",
		Short: "Cancel an event you host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Events.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Cancelled")
			return nil
		},
	}
}

func eventsAttendeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attendees <event-id>",
		Short: "List who responded to an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attendees, err := wire.Events.Attendees(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range attendees {
				fmt.Printf("%-8s %s (%s)\n", a.Status, a.User.Name, a.User.ID)
			}
			return nil
		},
	}
}

func rsvpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rsvp <event-id> <yes|no|maybe>",
		Short: "Respond to an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.RSVPStatus(strings.ToLower(args[1]))
			ev, err := wire.Events.RSVP(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("RSVP %s for %q\n", status, ev.Title)
			return nil
		},
	}
}

func printEventLine(ev domain.Event) {
	state := ""
	if ev.Cancelled {
		state = " [cancelled]"
	}
	fmt.Printf("%-8s %s  %s%s\n", ev.ID, ev.StartsAt.Format("2006-01-02 15:04"), ev.Title, state)
}
