package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"TeleClinic/database"
	"TeleClinic/notifications"
	"TeleClinic/payments"
	"TeleClinic/routes"
	"TeleClinic/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const notificationTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	rt, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.log

	if migrate {
		if err := runMigrations(ctx, rt); err != nil {
			return err
		}
	}

	tokens, err := utils.NewTokenMaker(rt.cfg.SymmetricKey)
	if err != nil {
		return err
	}
	notifier, err := notifications.New(rt.cfg, log)
	if err != nil {
		return err
	}
	dispatcher := notifications.NewDispatcher(notifier, notificationTimeout, log)
	gateways := payments.NewGateways(rt.cfg)
	if len(gateways) == 0 {
		log.Warn("no payment gateway configured; checkout is disabled")
	}

	handler := routes.SetupRoutes(routes.Dependencies{
		Config:   rt.cfg,
		DB:       rt.db,
		Cache:    rt.cache,
		Log:      log,
		Notifier: dispatcher,
		Tokens:   tokens,
		Gateways: gateways,
	})

	srv := &http.Server{
		Addr:           ":" + rt.cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("notify_provider", notifier.Name()),
			zap.Int("payment_gateways", len(gateways)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				database.LogPoolStats(rt.redis, log)
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serveErr:
		log.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return err
	}
	wg.Wait()
	dispatcher.Wait()
	log.Info("server exited gracefully")
	return nil
}
