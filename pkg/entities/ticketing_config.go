package entities

// TicketingConfig identifies the authoritative "open ticket" button of a guild
// and where new tickets are created.
type TicketingConfig struct {
	// ChannelID is the ID of the channel holding the entry message.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// MessageID is the ID of the entry message carrying the open ticket button.
	MessageID string `json:"message_id" bson:"message_id"`

	// CategoryID is the ID of the category that new tickets are created in.
	CategoryID string `json:"category_id" bson:"category_id"`
}

// IsComplete reports whether every field required to open tickets is set.
func (c TicketingConfig) IsComplete() bool {
	return c.ChannelID != "" && c.MessageID != "" && c.CategoryID != ""
}

// IsEntry reports whether the given channel and message are the configured entry point.
func (c TicketingConfig) IsEntry(channelID, messageID string) bool {
	return c.ChannelID == channelID && c.MessageID == messageID
}
