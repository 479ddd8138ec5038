// Package welcome sends the per-guild greeting when a member joins.
package welcome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"golang.org/x/time/rate"
)

const (
	// PlaceholderUser is replaced with the display name of the new member.
	PlaceholderUser = "{user}"

	// PlaceholderServer is replaced with the name of the guild.
	PlaceholderServer = "{server}"
)

// ErrRateLimited is returned when a guild has sent too many welcome messages recently.
var ErrRateLimited = errors.New("welcome message rate limited")

// Render fills the placeholders of a welcome template.
func Render(template, user, server string) string {
	return strings.NewReplacer(
		PlaceholderUser, user,
		PlaceholderServer, server,
	).Replace(template)
}

// Sender posts a message into a channel.
type Sender interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// Member is someone who joined a guild.
type Member struct {
	GuildID   string
	GuildName string
	UserID    string
	Name      string
}

// Greeter sends welcome messages, limiting how many each guild sends.
type Greeter struct {
	l      *slog.Logger
	guilds dataaccess.GuildDal
	sender Sender

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewGreeter creates a Greeter that allows burst messages at once per guild,
// refilled at limit per second.
func NewGreeter(l *slog.Logger, guilds dataaccess.GuildDal, sender Sender, limit rate.Limit, burst int) *Greeter {
	if burst < 1 {
		burst = 1
	}
	return &Greeter{
		l:        l,
		guilds:   guilds,
		sender:   sender,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Greet sends the welcome message of the member's guild. It does nothing if
// the guild has no welcome message configured.
func (g *Greeter) Greet(ctx context.Context, m Member) error {
	guild, err := g.guilds.GetGuildByID(ctx, m.GuildID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	cfg := guild.Welcome
	if !cfg.IsEnabled() {
		return nil
	}

	if !g.limiter(m.GuildID).Allow() {
		WelcomeMessages.WithLabelValues("rate_limited").Inc()
		return ErrRateLimited
	}

	if err := g.sender.SendMessage(ctx, cfg.ChannelID, Render(cfg.Message, m.Name, m.GuildName)); err != nil {
		WelcomeMessages.WithLabelValues("error").Inc()
		return fmt.Errorf("error sending welcome message: %w", err)
	}
	WelcomeMessages.WithLabelValues("sent").Inc()

	g.l.Debug("Sent welcome message",
		slog.String(logging.KeyGuild, m.GuildID),
		slog.String(logging.KeyUser, m.UserID),
	)
	return nil
}

func (g *Greeter) limiter(guildID string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	lim, ok := g.limiters[guildID]
	if !ok {
		lim = rate.NewLimiter(g.limit, g.burst)
		g.limiters[guildID] = lim
	}
	return lim
}
