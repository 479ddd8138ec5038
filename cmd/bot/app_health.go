package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexliesenfeld/health"
)

func (a *App) healthCheck() Controller {
	checker := health.NewChecker(
		// Set a TTL of 1 second for the results of the checks.
		health.WithCacheDuration(1*time.Second),

		// Set a timeout of 2 seconds for the checks.
		health.WithTimeout(2*time.Second),

		// Monitor the health of the ticket store.
		health.WithCheck(health.Check{
			Name: "Store",
			Check: func(ctx context.Context) error {
				if err := a.stores.Ping(ctx); err != nil {
					return fmt.Errorf("failed to ping %s store: %w", a.stores.Backend, err)
				}
				return nil
			},
			Timeout: 2 * time.Second,
			StatusListener: func(ctx context.Context, name string, state health.CheckState) {
				a.Log().Info("Store health check status changed",
					slog.String("name", name),
					slog.String("backend", a.stores.Backend),
					slog.String("state", string(state.Status)),
				)
			},
		}),

		// Monitor the health of the Discord API.
		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "Discord_API",
			Check: func(ctx context.Context) error {
				if _, err := a.Session().GatewayBot(); err != nil {
					return fmt.Errorf("failed to ping Discord API: %w", err)
				}
				return nil
			},
			Timeout: 3 * time.Second,
			StatusListener: func(ctx context.Context, name string, state health.CheckState) {
				a.Log().Info("Discord API health check status changed",
					slog.String("name", name),
					slog.String("state", string(state.Status)),
				)
			},
		}),

		// Report how many closes and deletes are waiting.
		health.WithCheck(health.Check{
			Name: "Scheduler",
			Check: func(ctx context.Context) error {
				if n := a.sched.Pending(); n > maxPendingEffects {
					return fmt.Errorf("%d ticket effects pending", n)
				}
				return nil
			},
		}),
	)

	return Controller(health.NewHandler(checker))
}

// maxPendingEffects is the backlog of delayed closes and deletes above which the bot reports unhealthy.
const maxPendingEffects = 1000
