package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/platform"
)

// interactionTimeout bounds the platform and store calls of one button press.
const interactionTimeout = 10 * time.Second

// fromBot reports whether the pressed button belongs to a message the bot sent.
// Buttons copied onto other messages are ignored.
func fromBot(a IApp, i *discordgo.InteractionCreate) bool {
	s := a.Session()
	if s.State == nil || s.State.User == nil {
		return false
	}
	return authoredBy(i.Message, s.State.User.ID)
}

func recordResult(command string, kind lifecycle.ResultKind) {
	monitoring.DiscordInteractionResults.WithLabelValues(command, string(kind)).Inc()
}

// createTicketHandler opens a ticket for the member who pressed the entry button.
func createTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	if !fromBot(a, i) {
		recordResult(platform.OpenTicketButtonID, lifecycle.ResultIgnored)
		return acknowledgeSilently(a, i)
	}

	// Opening a ticket takes several calls to Discord.
	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring response: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	ticket, err := a.Machine().RequestCreate(ctx, lifecycle.CreateRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		MessageID: i.Message.ID,
		ActorID:   i.Member.User.ID,
		ActorName: displayName(i.Member),
	})
	kind := lifecycle.KindOf(err)
	recordResult(platform.OpenTicketButtonID, kind)

	switch kind {
	case lifecycle.ResultSuccess:
		return editDeferred(a, i, messages.TicketOpened(ticket.ChannelID))
	case lifecycle.ResultIgnored:
		a.Log().Debug("Ignored open request", slog.String(logging.KeyError, err.Error()))
		return a.Session().InteractionResponseDelete(i.Interaction)
	case lifecycle.ResultInternalError:
		a.Log().Error("Error opening ticket", slog.String(logging.KeyError, err.Error()))
	}

	var openErr *lifecycle.AlreadyOpenError
	channelID := ""
	if errors.As(err, &openErr) {
		channelID = openErr.ChannelID
	}
	return editDeferred(a, i, messages.ForResult(kind, channelID))
}

// closeTicketHandler schedules the close of the ticket the button belongs to.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	if !fromBot(a, i) {
		recordResult(platform.CloseTicketButtonID, lifecycle.ResultIgnored)
		return acknowledgeSilently(a, i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	l := a.Log()
	s := a.Session()
	channelID := i.ChannelID

	err := a.Machine().RequestClose(ctx, lifecycle.CloseRequest{
		ChannelID: channelID,
		ActorID:   i.Member.User.ID,
		OnComplete: func(err error) {
			kind := lifecycle.KindOf(err)
			recordResult("close_effect", kind)

			var content string
			switch kind {
			case lifecycle.ResultSuccess:
				content = messages.TicketClosed
			case lifecycle.ResultIgnored:
				return
			default:
				l.Error("Error closing ticket", slog.String(logging.KeyError, err.Error()))
				content = messages.TicketCloseFailed
			}

			if _, err := s.ChannelMessageSend(channelID, content); err != nil {
				l.Error("Error sending close confirmation", slog.String(logging.KeyError, err.Error()))
			}
		},
	})
	kind := lifecycle.KindOf(err)
	recordResult(platform.CloseTicketButtonID, kind)

	if kind == lifecycle.ResultSuccess {
		return respondPublic(a, i, messages.CloseScheduled(int(a.Machine().GracePeriod().Seconds())))
	}
	if kind == lifecycle.ResultInternalError {
		l.Error("Error requesting close", slog.String(logging.KeyError, err.Error()))
	}
	return respondEphemeral(a, i, messages.ForResult(kind, ""))
}

// deleteTicketHandler schedules the deletion of the ticket the button belongs to.
func deleteTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	if !fromBot(a, i) {
		recordResult(platform.DeleteTicketButtonID, lifecycle.ResultIgnored)
		return acknowledgeSilently(a, i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	l := a.Log()
	s := a.Session()
	channelID := i.ChannelID

	err := a.Machine().RequestDelete(ctx, lifecycle.DeleteRequest{
		ChannelID: channelID,
		ActorID:   i.Member.User.ID,
		OnComplete: func(err error) {
			kind := lifecycle.KindOf(err)
			recordResult("delete_effect", kind)

			// On success the channel is gone, so there is no one to tell.
			if kind == lifecycle.ResultSuccess || kind == lifecycle.ResultIgnored {
				return
			}

			l.Error("Error deleting ticket", slog.String(logging.KeyError, err.Error()))
			if _, err := s.ChannelMessageSend(channelID, messages.TicketDeleteFailed); err != nil {
				l.Error("Error sending delete failure", slog.String(logging.KeyError, err.Error()))
			}
		},
	})
	kind := lifecycle.KindOf(err)
	recordResult(platform.DeleteTicketButtonID, kind)

	if kind == lifecycle.ResultSuccess {
		return respondPublic(a, i, messages.DeleteScheduled(int(a.Machine().GracePeriod().Seconds())))
	}
	if kind == lifecycle.ResultInternalError {
		l.Error("Error requesting delete", slog.String(logging.KeyError, err.Error()))
	}
	return respondEphemeral(a, i, messages.ForResult(kind, ""))
}
