//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/pkg/clock"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/platform"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		provideLoggingConfig,
		logging.CommonLogger,
		mux.NewRouter,
		provideSession,
		provideStores,
		clock.Real,
		provideScheduler,
		platform.NewDiscord,
		provideMachine,
		provideGreeter,
		NewApp,
	)
	return new(App), nil, nil
}
