package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/clock"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	testGuild    = "guild-1"
	testEntry    = "entry-channel"
	testMessage  = "entry-message"
	testCategory = "category-1"
	testAdmin    = "admin-role"
)

// memStore is an in-memory TicketDal and GuildDal.
type memStore struct {
	mu      sync.Mutex
	tickets map[string]entities.Ticket
	guilds  map[string]entities.Guild

	saveErr error
	removed int
}

func newMemStore() *memStore {
	return &memStore{
		tickets: make(map[string]entities.Ticket),
		guilds:  make(map[string]entities.Guild),
	}
}

func (s *memStore) SaveTicket(_ context.Context, t *entities.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tickets[t.ChannelID] = *t
	return nil
}

func (s *memStore) GetTicket(_ context.Context, channelID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[channelID]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) DeleteTicket(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[channelID]; ok {
		s.removed++
	}
	delete(s.tickets, channelID)
	return nil
}

func (s *memStore) GetOpenTicketByOwner(_ context.Context, ownerID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.OwnerID == ownerID && !t.Closed {
			return &t, nil
		}
	}
	return nil, dataaccess.ErrNotFound
}

func (s *memStore) ListTickets(_ context.Context, guildID string) ([]*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Ticket
	for _, t := range s.tickets {
		if t.GuildID == guildID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (s *memStore) SaveGuild(_ context.Context, g *entities.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[g.ID] = *g
	return nil
}

func (s *memStore) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guilds[id]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	return &g, nil
}

func (s *memStore) openCount(ownerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.OwnerID == ownerID && !t.Closed {
			n++
		}
	}
	return n
}

func (s *memStore) has(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tickets[channelID]
	return ok
}

// fakePlatform records channels and permission overrides.
type fakePlatform struct {
	mu        sync.Mutex
	next      int
	channels  map[string]ChannelSpec
	overrides map[string]map[string]Override
	admins    []string
	calls     int

	createErr   error
	existsErr   error
	overrideErr error
	// failOverrides makes that many SetOverride calls fail with overrideErr.
	failOverrides int
	deleted       []string
	sent          []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels:  make(map[string]ChannelSpec),
		overrides: make(map[string]map[string]Override),
		admins:    []string{testAdmin},
	}
}

func (p *fakePlatform) CreateChannel(_ context.Context, spec ChannelSpec) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.createErr != nil {
		return "", p.createErr
	}
	p.next++
	id := fmt.Sprintf("ticket-channel-%d", p.next)
	p.channels[id] = spec
	p.overrides[id] = make(map[string]Override)
	for _, o := range spec.Overrides {
		p.overrides[id][o.PrincipalID] = o
	}
	return id, nil
}

func (p *fakePlatform) DeleteChannel(_ context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if _, ok := p.channels[channelID]; !ok {
		return ErrChannelGone
	}
	delete(p.channels, channelID)
	p.deleted = append(p.deleted, channelID)
	return nil
}

func (p *fakePlatform) ChannelExists(_ context.Context, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.existsErr != nil {
		return false, p.existsErr
	}
	_, ok := p.channels[channelID]
	return ok, nil
}

func (p *fakePlatform) SetOverride(_ context.Context, channelID string, o Override) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if _, ok := p.channels[channelID]; !ok {
		return ErrChannelGone
	}
	if p.failOverrides > 0 {
		p.failOverrides--
		return p.overrideErr
	}
	p.overrides[channelID][o.PrincipalID] = o
	return nil
}

func (p *fakePlatform) AdminRoles(context.Context, string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return append([]string(nil), p.admins...), nil
}

func (p *fakePlatform) SendTicketControls(_ context.Context, t *entities.Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, t.ChannelID)
	return nil
}

func (p *fakePlatform) setAdmins(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins = ids
}

func (p *fakePlatform) removeChannel(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.channels, channelID)
}

func (p *fakePlatform) override(channelID, principalID string) (Override, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.overrides[channelID][principalID]
	return o, ok
}

func (p *fakePlatform) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type harness struct {
	m        *Machine
	store    *memStore
	platform *fakePlatform
	clk      *clock.FakeClock
	sched    *scheduler.Scheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fake(epoch)
	sched := scheduler.New(l, clk, scheduler.WithRetries(3, time.Second))
	store := newMemStore()
	platform := newFakePlatform()

	require.NoError(t, store.SaveGuild(context.Background(), &entities.Guild{
		ID: testGuild,
		Ticketing: entities.TicketingConfig{
			ChannelID:  testEntry,
			MessageID:  testMessage,
			CategoryID: testCategory,
		},
	}))

	m, err := New(l, Deps{
		Tickets:     store,
		Guilds:      store,
		Channels:    platform,
		Permissions: platform,
		Messenger:   platform,
		Scheduler:   sched,
		Clock:       clk,
	})
	require.NoError(t, err)

	return &harness{m: m, store: store, platform: platform, clk: clk, sched: sched}
}

func (h *harness) create(t *testing.T, actorID string) *entities.Ticket {
	t.Helper()
	ticket, err := h.m.RequestCreate(context.Background(), createRequest(actorID))
	require.NoError(t, err)
	return ticket
}

func createRequest(actorID string) CreateRequest {
	return CreateRequest{
		GuildID:   testGuild,
		ChannelID: testEntry,
		MessageID: testMessage,
		ActorID:   actorID,
		ActorName: "Name " + actorID,
	}
}

// completion captures the OnComplete callback of a request.
type completion struct {
	mu     sync.Mutex
	called int
	err    error
}

func (c *completion) done(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.called++
	c.err = err
}

func (c *completion) result() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.called, c.err
}

var errPlatform = errors.New("platform unavailable")

// removals reads the record removal counter of a source.
func removals(t *testing.T, source string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, RecordRemovals.WithLabelValues(source).Write(&m))
	return m.GetCounter().GetValue()
}
