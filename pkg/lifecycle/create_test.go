package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(nil, Deps{})
	require.ErrorContains(t, err, "ticket store is required")
}

func TestRequestCreate(t *testing.T) {
	h := newHarness(t)

	ticket, err := h.m.RequestCreate(context.Background(), CreateRequest{
		GuildID:   testGuild,
		ChannelID: testEntry,
		MessageID: testMessage,
		ActorID:   "user-1",
		ActorName: "Big Wolf",
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", ticket.OwnerID)
	require.False(t, ticket.Closed)
	require.Equal(t, epoch, ticket.CreatedAt.Time())

	stored, err := h.store.GetTicket(context.Background(), ticket.ChannelID)
	require.NoError(t, err)
	require.Equal(t, "user-1", stored.OwnerID)
	require.False(t, stored.Closed)

	spec := h.platform.channels[ticket.ChannelID]
	require.Equal(t, "ticket-big-wolf", spec.Name)
	require.Equal(t, testCategory, spec.CategoryID)
	require.Equal(t, testGuild, spec.GuildID)
	require.ElementsMatch(t, []Override{
		{PrincipalID: testGuild, Kind: PrincipalRole, Deny: PermView},
		{PrincipalID: "user-1", Kind: PrincipalMember, Allow: PermView},
	}, spec.Overrides)

	require.Equal(t, []string{ticket.ChannelID}, h.platform.sent)
}

func TestRequestCreate_ConfigurationMissing(t *testing.T) {
	tests := []struct {
		name  string
		guild *entities.Guild
	}{
		{
			name: "no configuration",
		},
		{
			name: "incomplete configuration",
			guild: &entities.Guild{
				ID:        "guild-2",
				Ticketing: entities.TicketingConfig{ChannelID: testEntry},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.guild != nil {
				require.NoError(t, h.store.SaveGuild(context.Background(), tt.guild))
			}

			req := createRequest("user-1")
			req.GuildID = "guild-2"
			_, err := h.m.RequestCreate(context.Background(), req)
			require.ErrorIs(t, err, ErrConfigurationMissing)
			require.Equal(t, ResultConfigurationMissing, KindOf(err))
			require.Zero(t, h.platform.callCount())
		})
	}
}

func TestRequestCreate_StaleEntry(t *testing.T) {
	h := newHarness(t)

	req := createRequest("user-1")
	req.MessageID = "old-message"
	_, err := h.m.RequestCreate(context.Background(), req)
	require.ErrorIs(t, err, ErrStaleEntry)
	require.Equal(t, ResultIgnored, KindOf(err))
	require.Zero(t, h.platform.callCount())
}

func TestRequestCreate_AlreadyOpen(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, "user-1")

	_, err := h.m.RequestCreate(context.Background(), createRequest("user-1"))
	require.ErrorIs(t, err, ErrAlreadyOpen)
	require.Equal(t, ResultAlreadyOpen, KindOf(err))

	var openErr *AlreadyOpenError
	require.True(t, errors.As(err, &openErr))
	require.Equal(t, first.ChannelID, openErr.ChannelID)
	require.Len(t, h.platform.channels, 1)
}

func TestRequestCreate_Concurrent(t *testing.T) {
	h := newHarness(t)

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.m.RequestCreate(context.Background(), createRequest("user-1"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrAlreadyOpen):
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, success)
	require.Equal(t, n-1, rejected)
	require.Equal(t, 1, h.store.openCount("user-1"))
	require.Len(t, h.platform.channels, 1)
}

func TestRequestCreate_ChannelCreationFails(t *testing.T) {
	h := newHarness(t)
	h.platform.createErr = errPlatform

	_, err := h.m.RequestCreate(context.Background(), createRequest("user-1"))
	require.ErrorIs(t, err, ErrAdapterFailure)
	require.ErrorIs(t, err, errPlatform)
	require.Equal(t, ResultInternalError, KindOf(err))
	require.Empty(t, h.store.tickets)
}

func TestRequestCreate_SaveFailsRollsBackChannel(t *testing.T) {
	h := newHarness(t)
	h.store.saveErr = errors.New("disk full")

	_, err := h.m.RequestCreate(context.Background(), createRequest("user-1"))
	require.ErrorContains(t, err, "disk full")
	require.Empty(t, h.store.tickets)
	require.Empty(t, h.platform.channels)
	require.Equal(t, []string{"ticket-channel-1"}, h.platform.deleted)
	require.Empty(t, h.platform.sent)
}

func TestRequestCreate_HealsStaleTicket(t *testing.T) {
	h := newHarness(t)
	stale := h.create(t, "user-1")
	h.platform.removeChannel(stale.ChannelID)

	fresh := h.create(t, "user-1")
	require.NotEqual(t, stale.ChannelID, fresh.ChannelID)
	require.False(t, h.store.has(stale.ChannelID))
	require.Equal(t, 1, h.store.openCount("user-1"))
}

func TestRequestCreate_ExistenceCheckFailsKeepsGuard(t *testing.T) {
	h := newHarness(t)
	h.create(t, "user-1")
	h.platform.existsErr = errPlatform

	_, err := h.m.RequestCreate(context.Background(), createRequest("user-1"))
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestRequestCreate_ClosedTicketDoesNotBlock(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, "user-1")

	require.NoError(t, h.m.RequestClose(context.Background(), CloseRequest{ChannelID: first.ChannelID, ActorID: "staff"}))
	h.clk.Advance(h.m.GracePeriod())

	second := h.create(t, "user-1")
	require.NotEqual(t, first.ChannelID, second.ChannelID)
	require.True(t, h.store.has(first.ChannelID))
	require.Equal(t, 1, h.store.openCount("user-1"))
}
