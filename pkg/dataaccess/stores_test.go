package dataaccess

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBoltStores(t *testing.T) *Stores {
	db, err := connection.OpenBolt(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)

	s, err := NewBoltStores(discardLogger(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newRedisStores(t *testing.T) *Stores {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStores(discardLogger(), client)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) *Stores{
		BackendBolt:  newBoltStores,
		BackendRedis: newRedisStores,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("tickets", func(t *testing.T) {
				testTicketDal(t, open(t))
			})
			t.Run("guilds", func(t *testing.T) {
				testGuildDal(t, open(t))
			})
			t.Run("ping", func(t *testing.T) {
				require.NoError(t, open(t).Ping(context.Background()))
			})
		})
	}
}

func testTicketDal(t *testing.T, s *Stores) {
	ctx := context.Background()
	d := s.Tickets

	_, err := d.GetTicket(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = d.GetOpenTicketByOwner(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, d.DeleteTicket(ctx, "missing"))

	created := custom.Now(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	closed := &entities.Ticket{ChannelID: "c1", GuildID: "g1", OwnerID: "u1", OwnerName: "wolf", Closed: true, CreatedAt: created}
	open := &entities.Ticket{ChannelID: "c2", GuildID: "g1", OwnerID: "u1", OwnerName: "wolf", CreatedAt: created}
	other := &entities.Ticket{ChannelID: "c3", GuildID: "g2", OwnerID: "u2", OwnerName: "fox", CreatedAt: created}
	for _, tk := range []*entities.Ticket{closed, open, other} {
		require.NoError(t, d.SaveTicket(ctx, tk))
	}

	got, err := d.GetTicket(ctx, "c2")
	require.NoError(t, err)
	require.Equal(t, "u1", got.OwnerID)
	require.False(t, got.Closed)
	require.True(t, got.CreatedAt.Time().Equal(created.Time()))

	got, err = d.GetOpenTicketByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "c2", got.ChannelID)

	list, err := d.ListTickets(ctx, "g1")
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, tk := range list {
		ids = append(ids, tk.ChannelID)
	}
	sort.Strings(ids)
	require.Equal(t, []string{"c1", "c2"}, ids)

	// Closing the open ticket leaves the owner without an open ticket.
	open.Closed = true
	require.NoError(t, d.SaveTicket(ctx, open))
	_, err = d.GetOpenTicketByOwner(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, d.DeleteTicket(ctx, "c2"))
	require.NoError(t, d.DeleteTicket(ctx, "c2"))
	_, err = d.GetTicket(ctx, "c2")
	require.ErrorIs(t, err, ErrNotFound)

	list, err = d.ListTickets(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "c1", list[0].ChannelID)
}

func testGuildDal(t *testing.T, s *Stores) {
	ctx := context.Background()
	g := s.Guilds

	_, err := g.GetGuildByID(ctx, "g1")
	require.ErrorIs(t, err, ErrNotFound)

	guild := &entities.Guild{
		ID: "g1",
		Ticketing: entities.TicketingConfig{
			ChannelID:  "entry",
			MessageID:  "msg",
			CategoryID: "cat",
		},
	}
	require.NoError(t, g.SaveGuild(ctx, guild))

	guild.Welcome = entities.WelcomeConfig{ChannelID: "welcome", Message: "Hi {user}"}
	require.NoError(t, g.SaveGuild(ctx, guild))

	got, err := g.GetGuildByID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, guild, got)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), discardLogger(), Options{Backend: "etcd"})
	require.Error(t, err)
}

func TestOpen_Bolt(t *testing.T) {
	s, err := Open(context.Background(), discardLogger(), Options{
		Backend:  BackendBolt,
		BoltPath: filepath.Join(t.TempDir(), "data", "tickets.db"),
	})
	require.NoError(t, err)
	require.Equal(t, BackendBolt, s.Backend)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close(context.Background()))
}

func TestRedisTicketDal_DropsStaleIndexEntries(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStores(discardLogger(), client)
	ctx := context.Background()

	require.NoError(t, s.Tickets.SaveTicket(ctx, &entities.Ticket{ChannelID: "c1", GuildID: "g1", OwnerID: "u1"}))
	mr.Del(ticketKey("c1"))

	_, err = s.Tickets.GetOpenTicketByOwner(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	// Removing the last member deletes the index set.
	require.False(t, mr.Exists(ownerKey("u1")))
}
