package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xkong/wechatbackends/internal/manifest"
)

func newManifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with article batch manifests offline",
	}

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the manifest JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), manifest.Schema())
		},
	}

	validate := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest and the files it references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				var verr *manifest.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintln(cmd.ErrOrStderr(), p)
					}
				}
				return err
			}
			if err := m.ReadContent(filepath.Dir(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d articles\n", len(m.Articles))
			return nil
		},
	}

	cmd.AddCommand(schema, validate)
	return cmd
}
