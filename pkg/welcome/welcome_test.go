package welcome

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "both", template: "Welcome {user} to {server}!", want: "Welcome Wolf to Pack!"},
		{name: "repeated", template: "{user} {user}", want: "Wolf Wolf"},
		{name: "none", template: "Hello", want: "Hello"},
		{name: "unknown placeholder", template: "{channel}", want: "{channel}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Render(tt.template, "Wolf", "Pack"))
		})
	}
}

type guildStore struct {
	guilds map[string]*entities.Guild
	err    error
}

func (s *guildStore) SaveGuild(_ context.Context, g *entities.Guild) error {
	s.guilds[g.ID] = g
	return nil
}

func (s *guildStore) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	if s.err != nil {
		return nil, s.err
	}
	g, ok := s.guilds[id]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	return g, nil
}

type sent struct {
	channelID string
	content   string
}

type recordingSender struct {
	sent []sent
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, channelID, content string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sent{channelID: channelID, content: content})
	return nil
}

func newGreeter(t *testing.T, burst int) (*Greeter, *guildStore, *recordingSender) {
	t.Helper()
	store := &guildStore{guilds: map[string]*entities.Guild{
		"g1": {
			ID:      "g1",
			Welcome: entities.WelcomeConfig{ChannelID: "welcome", Message: "Hi {user}, welcome to {server}"},
		},
		"g2": {ID: "g2"},
	}}
	sender := new(recordingSender)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGreeter(l, store, sender, 0, burst), store, sender
}

func TestGreeter_Greet(t *testing.T) {
	g, _, sender := newGreeter(t, 5)

	err := g.Greet(context.Background(), Member{GuildID: "g1", GuildName: "Pack", UserID: "u1", Name: "Wolf"})
	require.NoError(t, err)
	require.Equal(t, []sent{{channelID: "welcome", content: "Hi Wolf, welcome to Pack"}}, sender.sent)
}

func TestGreeter_NotConfigured(t *testing.T) {
	g, _, sender := newGreeter(t, 5)

	require.NoError(t, g.Greet(context.Background(), Member{GuildID: "g2", UserID: "u1"}))
	require.NoError(t, g.Greet(context.Background(), Member{GuildID: "unknown", UserID: "u1"}))
	require.Empty(t, sender.sent)
}

func TestGreeter_RateLimitedPerGuild(t *testing.T) {
	g, store, sender := newGreeter(t, 2)
	store.guilds["g3"] = &entities.Guild{
		ID:      "g3",
		Welcome: entities.WelcomeConfig{ChannelID: "hello", Message: "Hi"},
	}

	require.NoError(t, g.Greet(context.Background(), Member{GuildID: "g1", UserID: "u1"}))
	require.NoError(t, g.Greet(context.Background(), Member{GuildID: "g1", UserID: "u2"}))
	require.ErrorIs(t, g.Greet(context.Background(), Member{GuildID: "g1", UserID: "u3"}), ErrRateLimited)

	// Other guilds have their own budget.
	require.NoError(t, g.Greet(context.Background(), Member{GuildID: "g3", UserID: "u4"}))
	require.Len(t, sender.sent, 3)
}

func TestGreeter_Errors(t *testing.T) {
	g, store, sender := newGreeter(t, 5)

	sender.err = errors.New("missing access")
	require.ErrorContains(t, g.Greet(context.Background(), Member{GuildID: "g1", UserID: "u1"}), "missing access")

	store.err = errors.New("store down")
	require.ErrorContains(t, g.Greet(context.Background(), Member{GuildID: "g1", UserID: "u1"}), "store down")
}
