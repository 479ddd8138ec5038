package main

import (
	"io"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/keylock"
	"github.com/Jacobbrewer1/tickets/pkg/lifecycle"
	"github.com/Jacobbrewer1/tickets/pkg/welcome"
)

// testApp is an IApp without a Discord connection.
type testApp struct {
	l      *slog.Logger
	guilds dataaccess.GuildDal
	locks  *keylock.Mutex
}

func newTestApp() *testApp {
	return &testApp{
		l:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks: keylock.New(),
	}
}

func (a *testApp) Log() *slog.Logger {
	return a.l
}

func (a *testApp) Session() *discordgo.Session {
	return nil
}

func (a *testApp) Machine() *lifecycle.Machine {
	return nil
}

func (a *testApp) GuildDal() dataaccess.GuildDal {
	return a.guilds
}

func (a *testApp) Greeter() *welcome.Greeter {
	return nil
}

func (a *testApp) LockGuild(guildID string) func() {
	return a.locks.Lock(guildID)
}
