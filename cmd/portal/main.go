package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/keydesk/internal/buildinfo"
	"github.com/dmitrijs2005/keydesk/internal/client/cli"
	"github.com/dmitrijs2005/keydesk/internal/client/config"
	"github.com/dmitrijs2005/keydesk/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewPortalApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "portal stopped", "error", err)
	}
}
