// Package messages holds the text shown to users.
package messages

import (
	"fmt"

	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
)

const (
	// ErrUserErrorProcessing is shown when a request failed for a reason the user cannot fix.
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	// ErrUserNotAdmin is shown when a command requires the administrator permission.
	ErrUserNotAdmin = "You must be an administrator to use this command."

	// ErrUserNotTextChannel is shown when a command requires a text channel.
	ErrUserNotTextChannel = "You must provide a text channel."
)

// TicketOpened tells the user where their ticket is.
func TicketOpened(channelID string) string {
	return fmt.Sprintf("Your ticket has been created in <#%s>.", channelID)
}

// CloseScheduled tells the user the ticket will close shortly.
func CloseScheduled(seconds int) string {
	return fmt.Sprintf("This ticket will be closed in %d seconds.", seconds)
}

// DeleteScheduled tells the user the ticket will be deleted shortly.
func DeleteScheduled(seconds int) string {
	return fmt.Sprintf("This ticket will be deleted in %d seconds.", seconds)
}

const (
	// TicketClosed confirms a close took effect.
	TicketClosed = "This ticket has been closed."

	// TicketCloseFailed is shown when a close could not be applied.
	TicketCloseFailed = "This ticket could not be closed. Please try again."

	// TicketDeleteFailed is shown when a delete could not be applied.
	TicketDeleteFailed = "This ticket could not be deleted. Please try again."
)

// ForResult returns the message for a rejected or failed request. Successful
// results are worded by the caller since they depend on the request.
func ForResult(kind lifecycle.ResultKind, channelID string) string {
	switch kind {
	case lifecycle.ResultAlreadyOpen:
		if channelID != "" {
			return fmt.Sprintf("You already have an open ticket in <#%s>.", channelID)
		}
		return "You already have an open ticket."
	case lifecycle.ResultAlreadyClosed:
		return "This ticket is already closed."
	case lifecycle.ResultNotFound:
		return "This channel is not a ticket."
	case lifecycle.ResultConfigurationMissing:
		return "Ticketing has not been set up for this server. An administrator can run /setup tickets."
	default:
		return ErrUserErrorProcessing
	}
}

// TicketingEnabled confirms the setup of the entry message.
func TicketingEnabled(channelID string) string {
	return fmt.Sprintf("Ticketing has been enabled in channel <#%s>", channelID)
}

// WelcomeEnabled confirms the setup of the welcome message.
func WelcomeEnabled(channelID string) string {
	return fmt.Sprintf("Welcome messages will be sent to <#%s>", channelID)
}

// Pong answers the ping command.
func Pong(latencyMs int64) string {
	return fmt.Sprintf("Pong! Gateway latency is %dms.", latencyMs)
}
