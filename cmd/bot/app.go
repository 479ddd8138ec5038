package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/keylock"
	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
	"github.com/Jacobbrewer1/tickets/pkg/platform"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
	"github.com/Jacobbrewer1/tickets/pkg/welcome"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	shutdownTimeout = 10 * time.Second
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Machine returns the ticket lifecycle.
	Machine() *lifecycle.Machine

	// GuildDal returns the guild configuration store.
	GuildDal() dataaccess.GuildDal

	// Greeter returns the welcome message sender.
	Greeter() *welcome.Greeter

	// LockGuild serialises changes to the configuration of a guild.
	LockGuild(guildID string) (unlock func())
}

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the configuration of the application.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// open connects the session to the gateway.
	open func() error

	stores  *dataaccess.Stores
	sched   *scheduler.Scheduler
	machine *lifecycle.Machine
	greeter *welcome.Greeter

	guildLocks *keylock.Mutex
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *config.Config,
	r *mux.Router,
	s *discordgo.Session,
	stores *dataaccess.Stores,
	sched *scheduler.Scheduler,
	machine *lifecycle.Machine,
	greeter *welcome.Greeter,
) *App {
	return &App{
		Logger:  l,
		cfg:     cfg,
		r:       r,
		s:       s,
		open:    s.Open,
		stores:  stores,
		sched:   sched,
		machine: machine,
		greeter: greeter,

		guildLocks: keylock.New(),
	}
}

// Run connects to Discord and serves until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.RegisterBot()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username))
	})

	a.RegisterDiscordHandlers()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Start event listener.
	g.Go(func() error {
		a.eventListener(gctx)
		return nil
	})

	// Open websocket.
	if err := a.open(); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()

	g.Go(func() error {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running monitoring server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Info("Shutting down")
		return a.ShutdownHook()
	})

	return g.Wait()
}

// ShutdownHook stops the delayed effects, the commands and the connections.
func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Drop pending closes and deletes. The records are untouched, so the
	// users can request them again.
	a.sched.Stop()

	var errs []error

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		errs = append(errs, fmt.Errorf("error unregistering slash commands: %w", err))
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RegisterBot configures the session before it connects.
func (a *App) RegisterBot() {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	a.s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	if a.eventNotifier == nil {
		// Create event notifier. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	a.s.SetEventNotifier(a.eventNotifier)
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() {
	// Bot joined guild, or the guild became available on connect.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Ticket channel deleted outside the bot.
	a.s.AddHandler(channelDeletedHandler(a))

	// Member joined.
	a.s.AddHandler(memberJoinedHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			setupCmdName: setupCmdController,
			pingCmdName:  pingCmdController,
		},
		// Button Controllers
		map[string]commandProcessor{
			platform.OpenTicketButtonID:   createTicketHandler,
			platform.CloseTicketButtonID:  closeTicketHandler,
			platform.DeleteTicketButtonID: deleteTicketHandler,
		}))
}

func (a *App) eventListener(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-a.eventNotifier:
			switch t := e.(type) {
			case *discordgo.Event:
				if t.Type != "" {
					monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
				} else {
					// If there is no type, then use the operation name.
					monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
				}
			default:
				a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
				monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
			}
		}
	}
}

// registerSlashCommands replaces the commands of the guild with the bot's commands.
func (a *App) registerSlashCommands(guildID string) error {
	if _, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, guildID, slashCommands()); err != nil {
		return fmt.Errorf("error creating commands for guild %s: %w", guildID, err)
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Delete slash commands for each guild.
	var errs []error
	for _, guild := range guilds {
		if _, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, guild.ID, []*discordgo.ApplicationCommand{}); err != nil {
			errs = append(errs, fmt.Errorf("error deleting commands for guild %s: %w", guild.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Machine() *lifecycle.Machine {
	return a.machine
}

func (a *App) GuildDal() dataaccess.GuildDal {
	return a.stores.Guilds
}

func (a *App) Greeter() *welcome.Greeter {
	return a.greeter
}

func (a *App) LockGuild(guildID string) func() {
	return a.guildLocks.Lock(guildID)
}
