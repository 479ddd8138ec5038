package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTicketingConfig(t *testing.T) {
	c := TicketingConfig{ChannelID: "c", MessageID: "m", CategoryID: "cat"}
	require.True(t, c.IsComplete())
	require.True(t, c.IsEntry("c", "m"))
	require.False(t, c.IsEntry("c", "other"))
	require.False(t, c.IsEntry("other", "m"))

	c.CategoryID = ""
	require.False(t, c.IsComplete())
}

func TestWelcomeConfig(t *testing.T) {
	require.False(t, WelcomeConfig{}.IsEnabled())
	require.False(t, WelcomeConfig{ChannelID: "c"}.IsEnabled())
	require.True(t, WelcomeConfig{ChannelID: "c", Message: "hi {user}"}.IsEnabled())
}
