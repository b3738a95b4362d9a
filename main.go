package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mobile-next/wintest/cli"
	"github.com/mobile-next/wintest/desktop"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// cleanup hooks registered by commands, e.g. terminating launched apps
	hook := desktop.NewShutdownHook()
	cli.SetShutdownHook(hook)

	// setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.Execute(ctx)
	stop()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if cleanupErr := hook.Shutdown(cleanupCtx); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
	}
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
