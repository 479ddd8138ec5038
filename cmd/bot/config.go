package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/pkg/clock"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/platform"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
	"github.com/Jacobbrewer1/tickets/pkg/welcome"
	"golang.org/x/time/rate"
)

const storeConnectTimeout = 30 * time.Second

func provideLoggingConfig(cfg *config.Config) (*logging.Config, error) {
	return cfg.Logging()
}

func provideSession(cfg *config.Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return dg, nil
}

func provideStores(l *slog.Logger, cfg *config.Config) (*dataaccess.Stores, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	stores, err := dataaccess.Open(ctx, l, cfg.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
		defer cancel()
		if err := stores.Close(ctx); err != nil {
			l.Error("Error closing store", slog.String(logging.KeyError, err.Error()))
		}
	}
	return stores, cleanup, nil
}

func provideScheduler(l *slog.Logger, clk clock.Clock, cfg *config.Config) *scheduler.Scheduler {
	return scheduler.New(l, clk, scheduler.WithRetries(cfg.RetryAttempts, cfg.RetryDelay))
}

func provideMachine(
	l *slog.Logger,
	cfg *config.Config,
	stores *dataaccess.Stores,
	discord *platform.Discord,
	sched *scheduler.Scheduler,
	clk clock.Clock,
) (*lifecycle.Machine, error) {
	return lifecycle.New(l, lifecycle.Deps{
		Tickets:     stores.Tickets,
		Guilds:      stores.Guilds,
		Channels:    discord,
		Permissions: discord,
		Messenger:   discord,
		Scheduler:   sched,
		Clock:       clk,
	}, lifecycle.WithGracePeriod(cfg.GracePeriod))
}

func provideGreeter(l *slog.Logger, cfg *config.Config, stores *dataaccess.Stores, discord *platform.Discord) *welcome.Greeter {
	return welcome.NewGreeter(l, stores.Guilds, discord, rate.Limit(cfg.WelcomeRate), cfg.WelcomeBurst)
}
