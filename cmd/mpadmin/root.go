package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xkong/wechatbackends/internal/config"
	"github.com/xkong/wechatbackends/internal/logging"
	"github.com/xkong/wechatbackends/internal/query"
	"github.com/xkong/wechatbackends/pkg/client"
)

// Version is set at build time.
var Version = "dev"

// app carries the global flags and the lazily created session.
type app struct {
	verbose  bool
	selector string

	cfg        *config.Config
	client     *client.Client
	logCleanup func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mpadmin",
		Short:         "Drive the WeChat official account admin console",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCleanup != nil {
				return a.logCleanup()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.selector, "select", "", "jq expression applied to console responses")

	root.AddCommand(
		newSendCmd(a),
		newImageCmd(a),
		newContentImageCmd(a),
		newAppMsgCmd(a),
		newManifestCmd(a),
		newFakeIDCmd(a),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup() error {
	a.cfg = config.Load()

	logCfg := a.cfg.Logging()
	if a.verbose {
		logCfg.Level = "debug"
	}
	cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logCleanup = cleanup

	if a.selector != "" {
		if err := query.Default().Validate(a.selector); err != nil {
			return fmt.Errorf("--select: %w", err)
		}
	}
	return nil
}

// session logs in on first use.
func (a *app) session(cmd *cobra.Command) (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := client.Login(cmd.Context(), a.cfg.Email, a.cfg.PasswordMD5, a.cfg.ClientOptions()...)
	if err != nil {
		return nil, err
	}
	slog.Debug("session ready", slog.String("base_url", a.cfg.BaseURL))
	a.client = c
	return c, nil
}

// printDocument writes a console response, or the values the --select
// expression picks from it.
func (a *app) printDocument(w io.Writer, doc client.Document) error {
	if a.selector == "" {
		return printJSON(w, doc)
	}
	values, err := doc.Query(a.selector)
	if err != nil {
		return fmt.Errorf("--select: %w", err)
	}
	for _, v := range values {
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		if err := printJSON(w, v); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
