package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zatekoja/catalogsearch/cmd/catalogctl/commands"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observability.InitLogger("catalogctl", os.Getenv("APP_ENV"))

	if err := commands.NewRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
