package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groow/smoke/internal/scheduler"
	"github.com/groow/smoke/internal/server/handlers"
	"github.com/groow/smoke/internal/server/router"
	commandsvc "github.com/groow/smoke/internal/service/commands"
	"github.com/groow/smoke/internal/service/reporting"
	"github.com/groow/smoke/internal/service/runs"
	whatsappsvc "github.com/groow/smoke/internal/service/whatsapp"
	whatsappclient "github.com/groow/smoke/pkg/clients/whatsapp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled smoke runs and serve results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// backgroundRuns couples validation from the runs service with the
// scheduler's single-flight trigger.
type backgroundRuns struct {
	*scheduler.Scheduler
	svc *runs.Service
}

func (b backgroundRuns) Validate(opts runs.Options) error {
	return b.svc.Validate(opts)
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := a.wire(ctx)
	if err != nil {
		return err
	}
	defer w.close()

	sched, err := scheduler.NewScheduler(a.cfg.Smoke, w.runs, a.logger.Named("scheduler"))
	if err != nil {
		return err
	}

	trends := reporting.NewService(w.store, a.logger.Named("svc.reporting"))

	var webhook *handlers.WebhookHandler
	if a.cfg.WhatsApp.WebhookEnabled() {
		dispatcher := commandsvc.NewService(w.store, backgroundRuns{Scheduler: sched, svc: w.runs}, trends, a.logger.Named("svc.commands"))
		messaging := whatsappsvc.NewMetaWhatsAppService(a.cfg.WhatsApp, whatsappclient.NewClient(a.cfg.WhatsApp), dispatcher, a.logger.Named("svc.whatsapp"))
		webhook = handlers.NewWebhookHandler(messaging, a.logger.Named("handlers.whatsapp"))
	} else {
		a.logger.Info("whatsapp webhook disabled")
	}

	runsHandler := handlers.NewRunsHandler(w.runs, w.store, sched, trends, a.logger.Named("handlers.runs"))
	engine := router.New(runsHandler, webhook, a.logger.Named("router"))

	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
