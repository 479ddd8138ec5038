package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// maxStaleTickets bounds how many stale open tickets are cleaned up for one create request.
const maxStaleTickets = 5

// CreateRequest is a press of an open ticket button.
type CreateRequest struct {
	// GuildID is the guild the button was pressed in.
	GuildID string

	// ChannelID is the channel of the pressed button's message.
	ChannelID string

	// MessageID is the message carrying the pressed button.
	MessageID string

	// ActorID is the user who pressed the button.
	ActorID string

	// ActorName is the display name of the user, used for the channel name.
	ActorName string
}

// RequestCreate opens a ticket for the actor. The returned ticket has been
// persisted before RequestCreate returns.
func (m *Machine) RequestCreate(ctx context.Context, req CreateRequest) (t *entities.Ticket, err error) {
	defer func() { observe(transitionCreate, err) }()

	l := m.l.With(
		slog.String(logging.KeyTransition, transitionCreate),
		slog.String(logging.KeyGuild, req.GuildID),
		slog.String(logging.KeyUser, req.ActorID),
	)

	guild, err := m.d.Guilds.GetGuildByID(ctx, req.GuildID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrConfigurationMissing
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}

	cfg := guild.Ticketing
	if !cfg.IsComplete() {
		return nil, ErrConfigurationMissing
	}
	if !cfg.IsEntry(req.ChannelID, req.MessageID) {
		l.Debug("Ignoring open request from a message that is not the entry message",
			slog.String(logging.KeyChannel, req.ChannelID),
			slog.String("message_id", req.MessageID),
		)
		return nil, ErrStaleEntry
	}

	unlockActor := m.actorLocks.Lock(req.ActorID)
	defer unlockActor()

	existing, err := m.openTicketOf(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyOpenError{ChannelID: existing.ChannelID}
	}

	channelID, err := m.d.Channels.CreateChannel(ctx, ChannelSpec{
		GuildID:    req.GuildID,
		CategoryID: cfg.CategoryID,
		Name:       entities.ChannelName(req.ActorName),
		Overrides: []Override{
			{PrincipalID: everyoneRole(req.GuildID), Kind: PrincipalRole, Deny: PermView},
			{PrincipalID: req.ActorID, Kind: PrincipalMember, Allow: PermView},
		},
	})
	if err != nil {
		return nil, &AdapterError{Op: "create channel", Err: err}
	}

	unlockChannel := m.channelLocks.Lock(channelID)
	defer unlockChannel()

	t = &entities.Ticket{
		ChannelID: channelID,
		GuildID:   req.GuildID,
		OwnerID:   req.ActorID,
		OwnerName: req.ActorName,
		CreatedAt: custom.Now(m.d.Clock.Now()),
	}
	if err := m.d.Tickets.SaveTicket(ctx, t); err != nil {
		// Without a record nothing would ever clean the channel up.
		if delErr := m.d.Channels.DeleteChannel(context.WithoutCancel(ctx), channelID); delErr != nil && !errors.Is(delErr, ErrChannelGone) {
			l.Error("Error rolling back ticket channel",
				slog.String(logging.KeyChannel, channelID),
				slog.String(logging.KeyError, delErr.Error()),
			)
		}
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	if err := m.d.Messenger.SendTicketControls(ctx, t); err != nil {
		l.Warn("Error sending ticket controls",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	l.Info("Ticket opened", slog.String(logging.KeyChannel, channelID))
	return t, nil
}

// openTicketOf returns the open ticket of the user, or nil. Open tickets whose
// channel has disappeared are removed on the way. The caller must hold the
// actor lock.
func (m *Machine) openTicketOf(ctx context.Context, actorID string) (*entities.Ticket, error) {
	for i := 0; i < maxStaleTickets; i++ {
		t, err := m.d.Tickets.GetOpenTicketByOwner(ctx, actorID)
		if errors.Is(err, dataaccess.ErrNotFound) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("error getting open ticket: %w", err)
		}

		exists, err := m.d.Channels.ChannelExists(ctx, t.ChannelID)
		if err != nil {
			// Keep the user on the safe side of the one open ticket rule.
			m.l.Warn("Error checking ticket channel, assuming it exists",
				slog.String(logging.KeyChannel, t.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			return t, nil
		}
		if exists {
			return t, nil
		}

		if err := m.healChannel(ctx, t.ChannelID, transitionCreate); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("too many stale tickets for user %s: %w", actorID, ErrInconsistent)
}

// healChannel removes the record of a vanished channel under the channel lock.
func (m *Machine) healChannel(ctx context.Context, channelID, source string) error {
	unlock := m.channelLocks.Lock(channelID)
	defer unlock()

	if _, err := m.getTicket(ctx, channelID); errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	return m.removeStale(ctx, channelID, source)
}
