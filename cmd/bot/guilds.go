package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/welcome"
)

// reconcileTimeout bounds the clean up of tickets when a guild becomes available.
const reconcileTimeout = 2 * time.Minute

func guildJoinedHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name), slog.String(logging.KeyGuild, g.ID))

		// Increment the total number of guilds.
		monitoring.TotalDiscordGuilds.Inc()

		if err := a.registerSlashCommands(g.ID); err != nil {
			a.Log().Error("Error registering slash commands",
				slog.String(logging.KeyGuild, g.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}

		// Channels may have been deleted while the bot was away.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
			defer cancel()
			if _, err := a.Machine().Reconcile(ctx, g.ID); err != nil {
				a.Log().Error("Error reconciling tickets",
					slog.String(logging.KeyGuild, g.ID),
					slog.String(logging.KeyError, err.Error()),
				)
			}
		}()
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info("Left guild", slog.String(logging.KeyGuild, g.ID))

		// Decrement the total number of guilds.
		monitoring.TotalDiscordGuilds.Dec()
	}
}

// channelDeletedHandler removes the ticket of a channel deleted by someone else.
func channelDeletedHandler(a IApp) func(s *discordgo.Session, c *discordgo.ChannelDelete) {
	return func(_ *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.Channel == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()

		if err := a.Machine().ExternalChannelDeleted(ctx, c.ID); err != nil {
			a.Log().Error("Error removing ticket of deleted channel",
				slog.String(logging.KeyChannel, c.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

// memberJoinedHandler sends the welcome message of the guild.
func memberJoinedHandler(a IApp) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.User == nil || m.User.Bot {
			return
		}

		guildName := "the server"
		if g, err := s.State.Guild(m.GuildID); err == nil && g.Name != "" {
			guildName = g.Name
		}

		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()

		err := a.Greeter().Greet(ctx, welcome.Member{
			GuildID:   m.GuildID,
			GuildName: guildName,
			UserID:    m.User.ID,
			Name:      displayName(m.Member),
		})
		if err != nil {
			a.Log().Warn("Error sending welcome message",
				slog.String(logging.KeyGuild, m.GuildID),
				slog.String(logging.KeyUser, m.User.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}
