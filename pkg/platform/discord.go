// Package platform implements the lifecycle adapters on top of a Discord session.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// Discord adapts a discord session to the channel, permission and messaging
// needs of the ticket lifecycle.
type Discord struct {
	l *slog.Logger
	s *discordgo.Session
}

// NewDiscord creates the adapter.
func NewDiscord(l *slog.Logger, s *discordgo.Session) *Discord {
	return &Discord{
		l: l,
		s: s,
	}
}

// CreateChannel creates a text channel with the overrides of the spec.
func (d *Discord) CreateChannel(ctx context.Context, spec lifecycle.ChannelSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(spec.Overrides))
	for _, o := range spec.Overrides {
		overwrites = append(overwrites, toOverwrite(o))
	}

	ch, err := d.s.GuildChannelCreateComplex(spec.GuildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             spec.CategoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", fmt.Errorf("error creating channel: %w", err)
	}

	d.l.Debug("Created ticket channel",
		slog.String(logging.KeyGuild, spec.GuildID),
		slog.String(logging.KeyChannel, ch.ID),
	)
	return ch.ID, nil
}

// DeleteChannel deletes the channel.
func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.s.ChannelDelete(channelID); err != nil {
		if isUnknownChannel(err) {
			return lifecycle.ErrChannelGone
		}
		return fmt.Errorf("error deleting channel: %w", err)
	}
	return nil
}

// ChannelExists asks Discord whether the channel still exists.
func (d *Discord) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := d.s.Channel(channelID); err != nil {
		if isUnknownChannel(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting channel: %w", err)
	}
	return true, nil
}

// SetOverride replaces the permission overwrite of the principal.
func (d *Discord) SetOverride(ctx context.Context, channelID string, o lifecycle.Override) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ow := toOverwrite(o)
	if err := d.s.ChannelPermissionSet(channelID, ow.ID, ow.Type, ow.Allow, ow.Deny); err != nil {
		if isUnknownChannel(err) {
			return lifecycle.ErrChannelGone
		}
		return fmt.Errorf("error setting permission: %w", err)
	}
	return nil
}

// AdminRoles returns the roles of the guild holding the administrator permission.
func (d *Discord) AdminRoles(ctx context.Context, guildID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roles, err := d.s.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild roles: %w", err)
	}
	return adminRoleIDs(guildID, roles), nil
}

// SendTicketControls posts the controls message into the ticket channel.
func (d *Discord) SendTicketControls(ctx context.Context, ticket *entities.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.s.ChannelMessageSendComplex(ticket.ChannelID, ControlsMessage(ticket)); err != nil {
		return fmt.Errorf("error sending controls message: %w", err)
	}
	return nil
}

func adminRoleIDs(guildID string, roles []*discordgo.Role) []string {
	ids := make([]string, 0)
	for _, r := range roles {
		if r == nil || r.ID == guildID || r.Managed {
			continue
		}
		if r.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func toOverwrite(o lifecycle.Override) *discordgo.PermissionOverwrite {
	ow := &discordgo.PermissionOverwrite{
		ID:    o.PrincipalID,
		Type:  discordgo.PermissionOverwriteTypeRole,
		Allow: toPermissionBits(o.Allow),
		Deny:  toPermissionBits(o.Deny),
	}
	if o.Kind == lifecycle.PrincipalMember {
		ow.Type = discordgo.PermissionOverwriteTypeMember
	}
	return ow
}

func toPermissionBits(p lifecycle.Permission) int64 {
	var bits int64
	if p.Has(lifecycle.PermView) {
		bits |= discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory
	}
	if p.Has(lifecycle.PermSend) {
		bits |= discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionEmbedLinks
	}
	if p.Has(lifecycle.PermReact) {
		bits |= discordgo.PermissionAddReactions
	}
	if p.Has(lifecycle.PermManage) {
		bits |= discordgo.PermissionManageMessages
	}
	return bits
}

// isUnknownChannel reports whether Discord rejected the call because the channel does not exist.
func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	// A 404 also covers unknown members and roles, so the code decides when present.
	if restErr.Message != nil && restErr.Message.Code != 0 {
		return restErr.Message.Code == discordgo.ErrCodeUnknownChannel
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// SendMessage posts a plain message without pinging anyone.
func (d *Discord) SendMessage(ctx context.Context, channelID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}
