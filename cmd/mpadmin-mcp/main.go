package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkong/wechatbackends/internal/config"
	"github.com/xkong/wechatbackends/pkg/client"
	"github.com/xkong/wechatbackends/pkg/mcpsrv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - MP_EMAIL, MP_PASSWORD or MP_PASSWORD_MD5: console credentials
	// - MP_ALLOW_PUBLISH: enable mp_publish_appmsg (default: false)
	// - LOG_LEVEL, LOG_FILE: logging (default: info, stderr only)
	// - etc. (see internal/config for all options)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	c, err := client.Login(ctx, cfg.Email, cfg.PasswordMD5, cfg.ClientOptions()...)
	if err != nil {
		slog.Error("failed to log in", "error", err)
		os.Exit(1)
	}

	server, err := mcpsrv.NewServer(c, mcpsrv.WithConfig(cfg))
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting mpadmin MCP server on stdio", "allow_publish", cfg.AllowPublish)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
