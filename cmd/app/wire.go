//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/guestflow/faqbot/internal/bootstrap"
	"github.com/guestflow/faqbot/internal/infra/config"
	httpiface "github.com/guestflow/faqbot/internal/interface/http"
	"github.com/guestflow/faqbot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCorpusRepository,
		provideNotifier,
		provideArchiver,
		provideTenantProvider,
		provideRetrievalService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
