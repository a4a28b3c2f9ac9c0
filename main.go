package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/sayingsbot/cmd"
)

func main() {
	// Cancel the context on Ctrl+C or SIGTERM for a graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
