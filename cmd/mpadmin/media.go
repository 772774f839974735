package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage media library images",
	}

	upload := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload an image and print its file id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			id, err := c.UploadImage(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <file_id>",
		Short: "Delete an image from the media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			doc, err := c.DeleteImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printDocument(cmd.OutOrStdout(), doc)
		},
	}

	cmd.AddCommand(upload, del)
	return cmd
}

func newContentImageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "content-image <path>",
		Short: "Upload an image for article HTML and print its CDN url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			img, err := c.UploadContentImage(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), img.URL)
			return nil
		},
	}
}

func newFakeIDCmd(a *app) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "fakeid",
		Short: "Print the fakeid of the subscriber who wrote last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			item, err := c.LatestMessage(cmd.Context())
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("no subscriber messages yet")
			}
			if full {
				return a.printDocument(cmd.OutOrStdout(), item)
			}
			fmt.Fprintln(cmd.OutOrStdout(), item.String("fakeid"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print the whole message instead of the fakeid")
	return cmd
}
