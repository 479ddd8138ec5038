package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
)

// DeleteRequest is a press of a ticket's delete button.
type DeleteRequest struct {
	// ChannelID is the ticket channel.
	ChannelID string

	// ActorID is the user who pressed the button.
	ActorID string

	// OnComplete, if set, is called once the delete has taken effect or failed.
	// It is not called for a request that joined an already pending delete.
	OnComplete func(err error)
}

// RequestDelete acknowledges a delete and schedules it after the grace period.
// Deleting is allowed from open and closed. Repeated requests while a delete
// is pending are accepted without scheduling another.
func (m *Machine) RequestDelete(ctx context.Context, req DeleteRequest) (err error) {
	defer func() { observe(transitionDelete, err) }()

	unlock := m.channelLocks.Lock(req.ChannelID)
	if _, err := m.getTicket(ctx, req.ChannelID); err != nil {
		unlock()
		return err
	}
	first := m.markPending(m.pendingDelete, req.ChannelID)
	unlock()

	if !first {
		return nil
	}

	m.l.Info("Ticket delete requested",
		slog.String(logging.KeyChannel, req.ChannelID),
		slog.String(logging.KeyUser, req.ActorID),
	)

	m.d.Scheduler.Schedule(scheduler.Task{
		Name:  transitionDeleteEffect,
		Key:   req.ChannelID,
		Delay: m.grace,
		Run: func(ctx context.Context) error {
			return m.deleteEffect(ctx, req.ChannelID)
		},
		Done: func(err error) {
			m.clearPending(m.pendingDelete, req.ChannelID)
			observe(transitionDeleteEffect, err)
			if req.OnComplete != nil {
				req.OnComplete(err)
			}
		},
	})
	return nil
}

// deleteEffect removes the ticket channel and then its record.
func (m *Machine) deleteEffect(ctx context.Context, channelID string) error {
	unlock := m.channelLocks.Lock(channelID)
	defer unlock()

	if _, err := m.getTicket(ctx, channelID); errors.Is(err, ErrNotFound) {
		return scheduler.Permanent(fmt.Errorf("ticket removed before delete: %w", ErrInconsistent))
	} else if err != nil {
		return err
	}

	if err := m.d.Channels.DeleteChannel(ctx, channelID); err != nil && !errors.Is(err, ErrChannelGone) {
		return &AdapterError{Op: "delete channel", Err: err}
	}

	if err := m.d.Tickets.DeleteTicket(ctx, channelID); err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	RecordRemovals.WithLabelValues("delete").Inc()

	m.l.Info("Ticket deleted", slog.String(logging.KeyChannel, channelID))
	return nil
}
