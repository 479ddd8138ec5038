package entities

// WelcomeConfig is the message sent when a member joins the guild.
type WelcomeConfig struct {
	// ChannelID is the channel the welcome message is sent to.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// Message is the template of the welcome message.
	Message string `json:"message" bson:"message"`
}

// IsEnabled reports whether a welcome message should be sent.
func (c WelcomeConfig) IsEnabled() bool {
	return c.ChannelID != "" && c.Message != ""
}
