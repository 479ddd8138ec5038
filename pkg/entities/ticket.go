package entities

import (
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
)

// Ticket is the tracking record of a private support channel.
type Ticket struct {
	// ChannelID is the ID of the ticket channel. It identifies the ticket.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// OwnerID is the ID of the user that opened the ticket. It never changes.
	OwnerID string `json:"owner_id" bson:"owner_id"`

	// OwnerName is the display name of the owner when the ticket was opened.
	OwnerName string `json:"owner_name" bson:"owner_name"`

	// Closed is whether the ticket has been closed. Once true it stays true.
	Closed bool `json:"closed" bson:"closed"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// CreatedAt is the time that the ticket was opened.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the close took effect.
	ClosedAt custom.Datetime `json:"closed_at" bson:"closed_at"`
}

// Name is the channel name of the ticket.
func (t *Ticket) Name() string {
	return ChannelName(t.OwnerName)
}

// ChannelName builds a ticket channel name for the given display name.
// For example, "Big Wolf" becomes "ticket-big-wolf".
func ChannelName(displayName string) string {
	name := strings.ToLower(strings.Join(strings.Fields(displayName), "-"))
	if name == "" {
		name = "user"
	}
	return "ticket-" + name
}
