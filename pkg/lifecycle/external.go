package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// ExternalChannelDeleted removes the ticket of a channel that was deleted on
// the platform. It is a no-op for channels without a ticket.
func (m *Machine) ExternalChannelDeleted(ctx context.Context, channelID string) (err error) {
	defer func() { observe(transitionExternalDelete, err) }()

	unlock := m.channelLocks.Lock(channelID)
	defer unlock()

	if _, err := m.getTicket(ctx, channelID); errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	if err := m.d.Tickets.DeleteTicket(ctx, channelID); err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	RecordRemovals.WithLabelValues("external").Inc()

	m.l.Info("Ticket removed after channel deletion", slog.String(logging.KeyChannel, channelID))
	return nil
}

// Reconcile removes the tickets of a guild whose channels no longer exist,
// for example channels deleted while the bot was offline. It returns how
// many tickets were removed.
func (m *Machine) Reconcile(ctx context.Context, guildID string) (int, error) {
	tickets, err := m.d.Tickets.ListTickets(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("error listing tickets: %w", err)
	}

	removed := 0
	for _, t := range tickets {
		exists, err := m.d.Channels.ChannelExists(ctx, t.ChannelID)
		if err != nil {
			m.l.Warn("Error checking ticket channel",
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyChannel, t.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		if exists {
			continue
		}

		if err := m.healChannel(ctx, t.ChannelID, "reconcile"); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		m.l.Info("Removed tickets without a channel",
			slog.String(logging.KeyGuild, guildID),
			slog.Int("removed", removed),
		)
	}
	return removed, nil
}
