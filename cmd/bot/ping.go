package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
)

const pingCmdName = "ping"

// pingCmd reports the gateway latency.
var pingCmd = &discordgo.ApplicationCommand{
	Name:        pingCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Check that the bot is responding.",
}

func pingCmdController(_ IApp, _ *discordgo.InteractionCreate) (commandProcessor, error) {
	return pingCmdProcessor, nil
}

func pingCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, messages.Pong(a.Session().HeartbeatLatency().Milliseconds()))
}

// slashCommands are the commands registered in every guild.
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		setupCmd,
		pingCmd,
	}
}
