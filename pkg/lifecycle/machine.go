// Package lifecycle decides how tickets move between open, closed and
// deleted, and issues the platform and store effects of each transition.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/clock"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/keylock"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// DefaultGracePeriod is the delay between acknowledging a close or delete and doing it.
const DefaultGracePeriod = 5 * time.Second

const (
	transitionCreate         = "create"
	transitionClose          = "close"
	transitionDelete         = "delete"
	transitionCloseEffect    = "close_effect"
	transitionDeleteEffect   = "delete_effect"
	transitionExternalDelete = "external_delete"
)

// Deps are the collaborators of a Machine. All are required.
type Deps struct {
	Tickets     dataaccess.TicketDal
	Guilds      dataaccess.GuildDal
	Channels    ChannelAdapter
	Permissions PermissionAdapter
	Messenger   Messenger
	Scheduler   Scheduler
	Clock       clock.Clock
}

func (d Deps) validate() error {
	switch {
	case d.Tickets == nil:
		return errors.New("ticket store is required")
	case d.Guilds == nil:
		return errors.New("guild store is required")
	case d.Channels == nil:
		return errors.New("channel adapter is required")
	case d.Permissions == nil:
		return errors.New("permission adapter is required")
	case d.Messenger == nil:
		return errors.New("messenger is required")
	case d.Scheduler == nil:
		return errors.New("scheduler is required")
	case d.Clock == nil:
		return errors.New("clock is required")
	}
	return nil
}

// Option configures a Machine.
type Option func(m *Machine)

// WithGracePeriod sets the delay before close and delete take effect.
func WithGracePeriod(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.grace = d
		}
	}
}

// Machine is the ticket lifecycle state machine.
//
// Every read-modify-write of a ticket record, and every delayed effect,
// holds the lock of the ticket's channel. Create requests additionally hold
// the lock of the requesting user across the open ticket check and the
// insert. Locks are always taken user first, channel second.
type Machine struct {
	l *slog.Logger
	d Deps

	grace time.Duration

	channelLocks *keylock.Mutex
	actorLocks   *keylock.Mutex

	pendingMu     sync.Mutex
	pendingClose  map[string]struct{}
	pendingDelete map[string]struct{}
}

// New creates a Machine.
func New(l *slog.Logger, d Deps, opts ...Option) (*Machine, error) {
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid lifecycle dependencies: %w", err)
	}

	m := &Machine{
		l:             l,
		d:             d,
		grace:         DefaultGracePeriod,
		channelLocks:  keylock.New(),
		actorLocks:    keylock.New(),
		pendingClose:  make(map[string]struct{}),
		pendingDelete: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GracePeriod is the delay before close and delete take effect.
func (m *Machine) GracePeriod() time.Duration {
	return m.grace
}

// markPending records a scheduled effect. It returns false if one was already recorded.
func (m *Machine) markPending(set map[string]struct{}, channelID string) bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if _, ok := set[channelID]; ok {
		return false
	}
	set[channelID] = struct{}{}
	return true
}

func (m *Machine) isPending(set map[string]struct{}, channelID string) bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	_, ok := set[channelID]
	return ok
}

func (m *Machine) clearPending(set map[string]struct{}, channelID string) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	delete(set, channelID)
}

// getTicket reads the ticket of a channel, mapping a missing record to ErrNotFound.
func (m *Machine) getTicket(ctx context.Context, channelID string) (*entities.Ticket, error) {
	t, err := m.d.Tickets.GetTicket(ctx, channelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return t, nil
}

// removeStale deletes the record of a channel that no longer exists on the platform.
// The caller must hold the channel lock.
func (m *Machine) removeStale(ctx context.Context, channelID, source string) error {
	Inconsistencies.WithLabelValues(source).Inc()
	m.l.Warn("Removing ticket record without a channel",
		slog.String(logging.KeyChannel, channelID),
		slog.String("source", source),
	)

	if err := m.d.Tickets.DeleteTicket(ctx, channelID); err != nil {
		return fmt.Errorf("error removing stale ticket: %w", err)
	}
	RecordRemovals.WithLabelValues(source).Inc()
	return nil
}
