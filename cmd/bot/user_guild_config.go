package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/platform"
)

const (
	// setupCmdName is the command for all configuration commands.
	setupCmdName = "setup"

	// ticketsCmdName is the sub command that posts the open ticket message.
	ticketsCmdName = "tickets"

	// welcomeCmdName is the sub command that configures the welcome message.
	welcomeCmdName = "welcome"

	// channelOptionName is the text for the channel option.
	channelOptionName = "channel"

	// messageOptionName is the text for the message option.
	messageOptionName = "message"

	// ticketsCategoryName is the category created when the entry channel has none.
	ticketsCategoryName = "Tickets"
)

// setupPermissions limits the setup command to administrators in the Discord client.
var setupPermissions int64 = discordgo.PermissionAdministrator

var (
	// setupCmd is the command for all configuration commands.
	setupCmd = &discordgo.ApplicationCommand{
		Name:                     setupCmdName,
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "This is the command for all configuration commands.",
		DefaultMemberPermissions: &setupPermissions,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        ticketsCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This posts the open ticket button in the channel you specify.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         channelOptionName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "This is the channel you want users to open tickets from.",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						Required:     true,
					},
				},
			},
			{
				Name:        welcomeCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This sets the message sent when a member joins.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         channelOptionName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "This is the channel welcome messages are sent to.",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						Required:     true,
					},
					{
						Name:        messageOptionName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "The message. {user} is the new member and {server} is the server name.",
						Required:    true,
					},
				},
			},
		},
	}
)

func setupCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	// Ensure the user is an administrator.
	if !isAdmin(i.Member) {
		if err := respondEphemeral(a, i, messages.ErrUserNotAdmin); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return nil, errors.New("missing sub command")
	}

	// Extract the sub command.
	switch subCmd := opts[0].Name; subCmd {
	case ticketsCmdName:
		return setupTicketsCmdProcessor, nil
	case welcomeCmdName:
		return setupWelcomeCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// guildConfig gets the configuration of the guild, or a new one if it has none.
func guildConfig(ctx context.Context, gd dataaccess.GuildDal, guildID string) (*entities.Guild, error) {
	guild, err := gd.GetGuildByID(ctx, guildID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return &entities.Guild{ID: guildID}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}

// updateGuild applies change to the stored configuration of the guild while
// holding the guild lock, so concurrent setup commands keep each other's changes.
func updateGuild(ctx context.Context, a IApp, guildID string, change func(g *entities.Guild)) error {
	unlock := a.LockGuild(guildID)
	defer unlock()

	guild, err := guildConfig(ctx, a.GuildDal(), guildID)
	if err != nil {
		return err
	}

	change(guild)

	if err := a.GuildDal().SaveGuild(ctx, guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}
	return nil
}

// setupTicketsCmdProcessor posts the entry message and makes it the only one
// that opens tickets. Entry messages posted before stop working.
func setupTicketsCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := optionsByName(i.ApplicationCommandData().Options[0].Options)
	channelOpt, ok := opts[channelOptionName]
	if !ok {
		return errors.New("missing channel option")
	}

	// Extract the channel provided.
	channel := channelOpt.ChannelValue(a.Session())
	if channel == nil || channel.Type != discordgo.ChannelTypeGuildText {
		return respondEphemeral(a, i, messages.ErrUserNotTextChannel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	categoryID := channel.ParentID
	if categoryID == "" {
		category, err := a.Session().GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name: ticketsCategoryName,
			Type: discordgo.ChannelTypeGuildCategory,
		})
		if err != nil {
			return fmt.Errorf("error creating category: %w", err)
		}
		a.Log().Info("Created tickets category", slog.String(logging.KeyChannel, category.ID))
		categoryID = category.ID
	}

	// Send the entry message to the channel.
	msg, err := a.Session().ChannelMessageSendComplex(channel.ID, platform.EntryMessage())
	if err != nil {
		return fmt.Errorf("error sending open ticket message: %w", err)
	}

	err = updateGuild(ctx, a, i.GuildID, func(g *entities.Guild) {
		g.Ticketing = entities.TicketingConfig{
			ChannelID:  channel.ID,
			MessageID:  msg.ID,
			CategoryID: categoryID,
		}
	})
	if err != nil {
		return err
	}

	return respondEphemeral(a, i, messages.TicketingEnabled(channel.ID))
}

// setupWelcomeCmdProcessor stores the welcome message of the guild.
func setupWelcomeCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := optionsByName(i.ApplicationCommandData().Options[0].Options)
	channelOpt, ok := opts[channelOptionName]
	if !ok {
		return errors.New("missing channel option")
	}
	messageOpt, ok := opts[messageOptionName]
	if !ok {
		return errors.New("missing message option")
	}

	channel := channelOpt.ChannelValue(a.Session())
	if channel == nil || channel.Type != discordgo.ChannelTypeGuildText {
		return respondEphemeral(a, i, messages.ErrUserNotTextChannel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	err := updateGuild(ctx, a, i.GuildID, func(g *entities.Guild) {
		g.Welcome = entities.WelcomeConfig{
			ChannelID: channel.ID,
			Message:   messageOpt.StringValue(),
		}
	})
	if err != nil {
		return err
	}

	return respondEphemeral(a, i, messages.WelcomeEnabled(channel.ID))
}
