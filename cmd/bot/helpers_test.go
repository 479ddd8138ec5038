package main

import (
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Nick", displayName(&discordgo.Member{Nick: "Nick", User: &discordgo.User{Username: "user"}}))
	require.Equal(t, "user", displayName(&discordgo.Member{User: &discordgo.User{Username: "user"}}))
	require.Empty(t, displayName(nil))
}

func TestIsAdmin(t *testing.T) {
	require.True(t, isAdmin(&discordgo.Member{Permissions: discordgo.PermissionAdministrator | discordgo.PermissionSendMessages}))
	require.False(t, isAdmin(&discordgo.Member{Permissions: discordgo.PermissionManageChannels}))
	require.False(t, isAdmin(nil))
}

func TestAuthoredBy(t *testing.T) {
	require.True(t, authoredBy(&discordgo.Message{Author: &discordgo.User{ID: "bot"}}, "bot"))
	require.False(t, authoredBy(&discordgo.Message{Author: &discordgo.User{ID: "someone"}}, "bot"))
	require.False(t, authoredBy(&discordgo.Message{}, "bot"))
	require.False(t, authoredBy(nil, "bot"))
}

func TestSetupCmdController(t *testing.T) {
	admin := &discordgo.Member{
		User:        &discordgo.User{ID: "admin"},
		Permissions: discordgo.PermissionAdministrator,
	}
	command := func(sub string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{
				Type:    discordgo.InteractionApplicationCommand,
				GuildID: "guild",
				Member:  admin,
				Data: discordgo.ApplicationCommandInteractionData{
					Name: setupCmdName,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand},
					},
				},
			},
		}
	}

	for _, sub := range []string{ticketsCmdName, welcomeCmdName} {
		p, err := setupCmdController(newTestApp(), command(sub))
		require.NoError(t, err, sub)
		require.NotNil(t, p, sub)
	}

	_, err := setupCmdController(newTestApp(), command("unknown"))
	require.EqualError(t, err, "unhandled sub command unknown")
}

func TestSlashCommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range slashCommands() {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{setupCmdName, pingCmdName}, names)
	require.Equal(t, int64(discordgo.PermissionAdministrator), *setupCmd.DefaultMemberPermissions)
}
