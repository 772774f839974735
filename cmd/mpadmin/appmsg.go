package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/internal/publish"
)

func newAppMsgCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appmsg",
		Short: "Create, inspect and publish article batches",
	}

	create := &cobra.Command{
		Use:   "create <manifest>",
		Short: "Upload covers and inline images, create the batch and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			if m.SiteDomain == "" {
				m.SiteDomain = a.cfg.SiteDomain
			}
			pub, err := a.publisher(cmd)
			if err != nil {
				return err
			}
			articles, err := pub.Prepare(cmd.Context(), m, filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			id, err := pub.Submit(cmd.Context(), articles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Print the id of the newest batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			id, err := c.LatestAppMsgID(cmd.Context())
			if err != nil {
				return err
			}
			if id == "" {
				return fmt.Errorf("no article batches")
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <app_msg_id>",
		Short: "Delete a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.session(cmd)
			if err != nil {
				return err
			}
			doc, err := c.DeleteAppMsg(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printDocument(cmd.OutOrStdout(), doc)
		},
	}

	var to []string
	preview := &cobra.Command{
		Use:   "preview <app_msg_id>",
		Short: "Send a batch to test subscribers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.publisher(cmd)
			if err != nil {
				return err
			}
			docs, err := pub.Preview(cmd.Context(), args[0], to)
			for _, doc := range docs {
				if perr := a.printDocument(cmd.OutOrStdout(), doc); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	preview.Flags().StringSliceVar(&to, "to", nil, "test subscriber fakeids")
	_ = preview.MarkFlagRequired("to")

	var yes bool
	publishCmd := &cobra.Command{
		Use:   "publish <app_msg_id>",
		Short: "Broadcast a batch to every subscriber",
		Long:  "Broadcast a batch to every subscriber. This cannot be undone and requires --yes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("publishing reaches every subscriber; pass --yes to confirm")
			}
			pub, err := a.publisher(cmd)
			if err != nil {
				return err
			}
			doc, err := pub.Publish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printDocument(cmd.OutOrStdout(), doc)
		},
	}
	publishCmd.Flags().BoolVar(&yes, "yes", false, "confirm the broadcast")

	cmd.AddCommand(create, latest, del, preview, publishCmd)
	return cmd
}

func (a *app) publisher(cmd *cobra.Command) (*publish.Publisher, error) {
	c, err := a.session(cmd)
	if err != nil {
		return nil, err
	}
	return publish.New(c, a.cfg.MediaCacheMaxItems)
}
