package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// commandController picks the processor for a slash command. A nil processor
// means the controller has already responded.
type commandController func(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error)

// commandProcessor handles an interaction.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler has run.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// requestApp gives the handlers of one interaction a logger carrying its request ID.
type requestApp struct {
	IApp
	l *slog.Logger
}

func (r *requestApp) Log() *slog.Logger {
	return r.l
}

func withRequestLogger(a IApp, i *discordgo.InteractionCreate) IApp {
	return &requestApp{
		IApp: a,
		l: a.Log().With(
			slog.String(logging.KeyRequestID, uuid.NewString()),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, i.ChannelID),
			slog.String(logging.KeyUser, i.Member.User.ID),
		),
	}
}

// interactionHandler routes slash commands and button presses to their handlers.
func interactionHandler(a IApp, slash map[string]commandController, buttons map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		// Tickets only exist in guilds.
		if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
			return
		}

		ra := withRequestLogger(a, i)
		now := time.Now()
		name := "unknown"

		defer func() {
			if rec := recover(); rec != nil {
				ra.Log().Error("Panic in interaction handler",
					slog.String("command", name),
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
			}
			monitoring.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(now).Seconds())
		}()

		var processor commandProcessor
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			name = i.ApplicationCommandData().Name
			controller, ok := slash[name]
			if !ok {
				ra.Log().Error("No controller found for command", slog.String("command", name))
				if err := respondSlashError(ra, i); err != nil {
					ra.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
				return
			}

			var err error
			processor, err = controller(ra, i)
			if err != nil {
				ra.Log().Error("Error getting processor for command",
					slog.String("command", name),
					slog.String(logging.KeyError, err.Error()))

				if err := respondSlashError(ra, i); err != nil {
					ra.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
				return
			}
			if processor == nil {
				return
			}

		case discordgo.InteractionMessageComponent:
			name = i.MessageComponentData().CustomID
			var ok bool
			processor, ok = buttons[name]
			if !ok {
				ra.Log().Debug("Ignoring unknown component", slog.String("custom_id", name))
				return
			}

		default:
			return
		}

		ra.Log().Debug("Handling interaction", slog.String("command", name))
		if err := processor(ra, i); err != nil {
			ra.Log().Error("Error processing interaction",
				slog.String("command", name),
				slog.String(logging.KeyError, err.Error()))
		}
	}
}
