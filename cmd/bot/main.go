package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/spf13/pflag"
)

func main() {
	flagSet := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	envFile := flagSet.String("env-file", "", "Path to a dotenv file loaded before reading the environment")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalln(err)
	}

	if err := run(*envFile); err != nil {
		log.Fatalln(err)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	a, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Info("Starting application", slog.String("store", cfg.StoreBackend))
	if err := a.Run(ctx); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		return err
	}
	return nil
}
