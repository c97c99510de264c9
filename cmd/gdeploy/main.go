// Command gdeploy publishes a built static site to S3 under versioned keys.
//
//	gdeploy --preview
//	gdeploy --live --confirm dist/client
//	gdeploy --bucket my-bucket --project org/repo --branch main --get-branch-url
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		code := report(os.Stderr, err)
		stop()
		os.Exit(code)
	}
}
