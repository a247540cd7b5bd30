package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trainsys/client/internal/devserver"
	"trainsys/client/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "devserver.yaml", "path to dev server config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info or error")
	flag.Parse()

	cfg, err := devserver.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := logging.NewWriter(os.Stdout, logging.ParseLevel(*logLevel))
	logger.Infof("trainsys dev server starting (config: %s)", *configPath)

	srv, err := devserver.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
