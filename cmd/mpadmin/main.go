// Command mpadmin drives the admin console of an official account from the
// command line: messages, media, article batches and manifests.
//
// Credentials and defaults come from the environment (MP_EMAIL,
// MP_PASSWORD or MP_PASSWORD_MD5, MP_SITE_DOMAIN, ...).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
