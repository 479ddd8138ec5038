package dataaccess

import (
	"context"
	"errors"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

const (
	ticketDalName = "ticket_dal"
	guildDalName  = "guild_dal"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// TicketDal is the durable mapping from channel ID to ticket record.
type TicketDal interface {
	// SaveTicket inserts or replaces the ticket keyed by its channel ID.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets the ticket of a channel. Returns ErrNotFound if there is none.
	GetTicket(ctx context.Context, channelID string) (*entities.Ticket, error)

	// DeleteTicket removes the ticket of a channel. Removing a missing ticket is not an error.
	DeleteTicket(ctx context.Context, channelID string) error

	// GetOpenTicketByOwner gets a ticket of the user that is not closed.
	// Returns ErrNotFound if the user has no open ticket.
	GetOpenTicketByOwner(ctx context.Context, ownerID string) (*entities.Ticket, error)

	// ListTickets gets every ticket of a guild, open or closed.
	ListTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error)
}

// GuildDal stores the per guild configuration.
type GuildDal interface {
	// SaveGuild saves a guild.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets a guild by ID. Returns ErrNotFound if the guild has no configuration.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}
