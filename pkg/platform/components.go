package platform

import (
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
)

const (
	// OpenTicketButtonID is the ID for the open ticket button.
	OpenTicketButtonID = "open_ticket_button"

	// CloseTicketButtonID is the ID for the close ticket button.
	CloseTicketButtonID = "close_ticket_button"

	// DeleteTicketButtonID is the ID for the delete ticket button.
	DeleteTicketButtonID = "delete_ticket_button"
)

const (
	// TicketEmoji is the emoji used for the open button. (Envelope with arrow)
	TicketEmoji = "\U0001F4E9"

	// CloseEmoji is the emoji used for the close button. (Padlock)
	CloseEmoji = "\U0001F510"

	// DeleteEmoji is the emoji used for the delete button. (Cross)
	DeleteEmoji = "❌"
)

// EntryMessage is the message carrying the open ticket button.
func EntryMessage() *discordgo.MessageSend {
	const messageText = `How can we help?
Welcome to our tickets channel. If you have any questions or inquiries, please click on the button below to contact the staff by opening a ticket!`

	return &discordgo.MessageSend{
		Content:         messageText,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Open Ticket", TicketEmoji),
						Style:    discordgo.PrimaryButton,
						CustomID: OpenTicketButtonID,
					},
				},
			},
		},
	}
}

// ControlsMessage is the first message of a ticket channel.
func ControlsMessage(ticket *entities.Ticket) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf(`<@%s>, your ticket has been created.
Please provide any additional info you deem relevant to help us answer faster.`, ticket.OwnerID),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{ticket.OwnerID},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Close", CloseEmoji),
						Style:    discordgo.SecondaryButton,
						CustomID: CloseTicketButtonID,
					},
					discordgo.Button{
						Label:    fmt.Sprintf("%s Delete", DeleteEmoji),
						Style:    discordgo.DangerButton,
						CustomID: DeleteTicketButtonID,
					},
				},
			},
		},
	}
}
