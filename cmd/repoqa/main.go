package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cexll/repoqa/internal/export"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		clipboard: export.SystemClipboard{},
	}
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
