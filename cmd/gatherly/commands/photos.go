package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gatherly/internal/domain"
)

func photosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Browse and manage event galleries",
	}
	cmd.AddCommand(photosListCmd(), photosUploadCmd(), photosRmCmd())
	return cmd
}

func photosListCmd() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "ls <event-id>",
		Short: "List an event's gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := wire.Photos.List(cmd.Context(), args[0], page, perPage)
			if err != nil {
				return err
			}
			for _, p := range list.Items {
				caption := ""
				if p.Caption != nil {
					caption = "  " + *p.Caption
				}
				fmt.Printf("%-8s %s%s\n", p.ID, p.URL, caption)
			}
			if list.Page.HasMore {
				fmt.Printf("-- page %d, %d total; --page %d for more\n",
					list.Page.Page, list.Page.TotalItems, list.Page.Page+1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "photos per page")
	return cmd
}

func photosUploadCmd() *cobra.Command {
	var caption string

	cmd := &cobra.Command{
		Use:   "upload <event-id> <file>",
		Short: "Add a photo to an event's gallery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			photo, err := wire.Photos.Upload(cmd.Context(), args[0], domain.PhotoUpload{
				Filename: filepath.Base(args[1]),
				Caption:  caption,
				Body:     f,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %s -> %s\n", photo.ID, photo.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "photo caption")
	return cmd
}

func photosRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <photo-id>",
		Short: "Delete a photo you uploaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Photos.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	}
}
