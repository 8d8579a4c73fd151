package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/repository"
	"github.com/groow/smoke/internal/repository/memory"
	"github.com/groow/smoke/internal/repository/mongodb"
	"github.com/groow/smoke/internal/repository/sheets"
	"github.com/groow/smoke/internal/service/notify"
	"github.com/groow/smoke/internal/service/runs"
	"github.com/groow/smoke/internal/smoke"
	"github.com/groow/smoke/pkg/clients/marketplace"
	whatsappclient "github.com/groow/smoke/pkg/clients/whatsapp"
)

// newAPI builds a marketplace client. Smoke runs pass retries=0 so every
// recorded status is what the first attempt saw.
func (a *app) newAPI(retries int) *marketplace.Client {
	return marketplace.New(marketplace.Options{
		BaseURL:       a.cfg.API.BaseURL,
		Timeout:       a.cfg.API.Timeout,
		Retries:       retries,
		MaxConcurrent: a.cfg.API.MaxConcurrent,
		Logger:        a.logger.Named("client.marketplace"),
	})
}

// wiring holds the run pipeline and the resources it must release.
type wiring struct {
	runs  *runs.Service
	store repository.RunRepository
	close func()
}

func (a *app) wire(ctx context.Context) (*wiring, error) {
	suites, err := a.loadSuites()
	if err != nil {
		return nil, err
	}

	w := &wiring{close: func() {}}

	if a.cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewRunRepository(ctx, a.cfg.MongoDB.URI, a.cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			a.logger.Warn("failed to ensure run indexes", zap.Error(err))
		}
		w.store = mongoRepo
		w.close = func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				a.logger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
	} else {
		a.logger.Info("MONGODB_URI not set, keeping runs in memory")
		w.store = memory.NewStore()
	}

	var ledger runs.Ledger
	if a.cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, a.cfg.Sheets, a.logger.Named("repo.sheets"))
		if err != nil {
			w.close()
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		ledger = sheets.NewRunLedger(sheetsRepo)
	}

	var notifier runs.Notifier
	if a.cfg.WhatsApp.Enabled() {
		notifier = notify.NewService(whatsappclient.NewClient(a.cfg.WhatsApp), a.cfg.WhatsApp.Recipients(), a.logger.Named("svc.notify"))
	}

	w.runs = runs.NewService(runs.Deps{
		NewAPI:      func() smoke.API { return a.newAPI(0) },
		Suites:      suites,
		Credentials: a.cfg.Credentials,
		Smoke:       a.cfg.Smoke,
		Repo:        w.store,
		Ledger:      ledger,
		Notifier:    notifier,
		Logger:      a.logger.Named("svc.runs"),
	})
	return w, nil
}
