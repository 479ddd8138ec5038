package lifecycle

import (
	"context"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/scheduler"
)

// Permission is a set of channel permissions.
type Permission uint8

const (
	PermView Permission = 1 << iota
	PermSend
	PermReact
	PermManage
)

// Has reports whether every permission in o is in p.
func (p Permission) Has(o Permission) bool {
	return p&o == o
}

// PrincipalKind says whether an override targets a role or a member.
type PrincipalKind int

const (
	PrincipalRole PrincipalKind = iota
	PrincipalMember
)

// Override is a channel permission override for one principal. Permissions
// in neither Allow nor Deny are inherited.
type Override struct {
	PrincipalID string
	Kind        PrincipalKind
	Allow       Permission
	Deny        Permission
}

// ChannelSpec describes a ticket channel to create.
type ChannelSpec struct {
	GuildID    string
	CategoryID string
	Name       string
	Overrides  []Override
}

// ChannelAdapter creates and deletes channels on the platform.
type ChannelAdapter interface {
	// CreateChannel creates a text channel and returns its ID.
	CreateChannel(ctx context.Context, spec ChannelSpec) (string, error)

	// DeleteChannel deletes a channel. Returns ErrChannelGone if it does not exist.
	DeleteChannel(ctx context.Context, channelID string) error

	// ChannelExists reports whether the channel still exists.
	ChannelExists(ctx context.Context, channelID string) (bool, error)
}

// PermissionAdapter edits channel permission overrides.
type PermissionAdapter interface {
	// SetOverride replaces the override of the principal on the channel.
	// Returns ErrChannelGone if the channel does not exist.
	SetOverride(ctx context.Context, channelID string, o Override) error

	// AdminRoles returns the IDs of the guild roles holding administrative capability.
	AdminRoles(ctx context.Context, guildID string) ([]string, error)
}

// Messenger sends the ticket's first message.
type Messenger interface {
	// SendTicketControls posts the close and delete controls into the ticket channel.
	SendTicketControls(ctx context.Context, ticket *entities.Ticket) error
}

// Scheduler runs delayed effects.
type Scheduler interface {
	Schedule(t scheduler.Task)
}

// everyoneRole is the principal of the role every member has. It shares the guild ID.
func everyoneRole(guildID string) string {
	return guildID
}
