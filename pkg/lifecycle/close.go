package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
)

// CloseRequest is a press of a ticket's close button.
type CloseRequest struct {
	// ChannelID is the ticket channel.
	ChannelID string

	// ActorID is the user who pressed the button.
	ActorID string

	// OnComplete, if set, is called once the close has taken effect or failed.
	OnComplete func(err error)
}

// RequestClose acknowledges a close and schedules it after the grace period.
// A nil error means the close was accepted, not that it has happened.
func (m *Machine) RequestClose(ctx context.Context, req CloseRequest) (err error) {
	defer func() { observe(transitionClose, err) }()

	unlock := m.channelLocks.Lock(req.ChannelID)
	t, err := m.getTicket(ctx, req.ChannelID)
	if err != nil {
		unlock()
		return err
	}
	if t.Closed || !m.markPending(m.pendingClose, req.ChannelID) {
		unlock()
		return ErrAlreadyClosed
	}
	unlock()

	m.l.Info("Ticket close requested",
		slog.String(logging.KeyChannel, req.ChannelID),
		slog.String(logging.KeyUser, req.ActorID),
	)

	m.d.Scheduler.Schedule(scheduler.Task{
		Name:  transitionCloseEffect,
		Key:   req.ChannelID,
		Delay: m.grace,
		Run: func(ctx context.Context) error {
			return m.closeEffect(ctx, req.ChannelID, req.ActorID)
		},
		Done: func(err error) {
			m.clearPending(m.pendingClose, req.ChannelID)
			observe(transitionCloseEffect, err)
			if req.OnComplete != nil {
				req.OnComplete(err)
			}
		},
	})
	return nil
}

// closeEffect locks the ticket channel away from its owner and marks the
// ticket closed. The record is only marked closed once every edit succeeded.
func (m *Machine) closeEffect(ctx context.Context, channelID, actorID string) error {
	unlock := m.channelLocks.Lock(channelID)
	defer unlock()

	t, err := m.getTicket(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return scheduler.Permanent(fmt.Errorf("ticket removed before close: %w", ErrInconsistent))
	} else if err != nil {
		return err
	}
	if t.Closed {
		return nil
	}

	admins, err := m.d.Permissions.AdminRoles(ctx, t.GuildID)
	if err != nil {
		return &AdapterError{Op: "list admin roles", Err: err}
	}

	overrides := make([]Override, 0, len(admins)+2)
	overrides = append(overrides,
		Override{PrincipalID: everyoneRole(t.GuildID), Kind: PrincipalRole, Deny: PermView},
		Override{PrincipalID: t.OwnerID, Kind: PrincipalMember, Allow: PermView, Deny: PermSend | PermReact},
	)
	for _, roleID := range admins {
		overrides = append(overrides, Override{
			PrincipalID: roleID,
			Kind:        PrincipalRole,
			Allow:       PermView | PermSend | PermManage | PermReact,
		})
	}

	for _, o := range overrides {
		err := m.d.Permissions.SetOverride(ctx, channelID, o)
		if errors.Is(err, ErrChannelGone) {
			if err := m.removeStale(ctx, channelID, transitionCloseEffect); err != nil {
				return err
			}
			return scheduler.Permanent(fmt.Errorf("channel removed before close: %w", ErrInconsistent))
		} else if err != nil {
			return &AdapterError{Op: "set permission override", Err: err}
		}
	}

	t.Closed = true
	t.ClosedBy = actorID
	t.ClosedAt = custom.Now(m.d.Clock.Now())
	if err := m.d.Tickets.SaveTicket(ctx, t); err != nil {
		return fmt.Errorf("error saving closed ticket: %w", err)
	}

	m.l.Info("Ticket closed",
		slog.String(logging.KeyChannel, channelID),
		slog.String(logging.KeyUser, actorID),
	)
	return nil
}
