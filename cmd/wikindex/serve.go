package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/metrics"
	chiTransport "github.com/kailas-cloud/wikindex/internal/transport/chi"
	"github.com/kailas-cloud/wikindex/internal/transport/stream"
	healthuc "github.com/kailas-cloud/wikindex/internal/usecase/health"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the store query API and the event webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := bootstrap(ctx, "serve")
		if err != nil {
			return err
		}
		defer svc.Close()
		logger := svc.logger
		svc.watchExclusions(ctx)

		// Events pinger stays a nil interface when the stream is disabled.
		var events healthuc.Pinger
		if svc.cfg.Events.Enabled {
			src, err := svc.openStream(ctx)
			if err != nil {
				return err
			}
			defer src.Close()
			events = src

			consumer := stream.NewConsumer(src, svc.app.Events, stream.Options{
				BatchSize: svc.cfg.Events.BatchSize,
				Block:     time.Duration(svc.cfg.Events.BlockMs) * time.Millisecond,
			}, logger)
			go func() {
				if err := consumer.Run(ctx); err != nil {
					logger.Error("Event consumer stopped", zap.Error(err))
				}
			}()
		}

		server := chiTransport.NewServer(svc.app.Stores, svc.app.Events, healthuc.New(svc.store, events), logger).
			WithPagination(svc.cfg.Index.DefaultPageSize, svc.cfg.Index.MaxPageSize)

		r := chi.NewRouter()
		r.Use(jsonRecoverer(logger))
		r.Use(chiMiddleware.RequestID)
		r.Use(wideEventMiddleware(logger))
		r.Use(chiTransport.BearerAuthMiddleware(svc.cfg.Auth.APIKeys))
		r.Use(chiTransport.RateLimitMiddleware(svc.cfg.HTTP.RateLimitRPS, svc.cfg.HTTP.RateLimitBurst))
		r.Use(chiTransport.PrincipalMiddleware)
		r.Use(metrics.Middleware(svc.app.Stores.Names()...))
		server.Register(r)

		addr := fmt.Sprintf(":%d", svc.cfg.HTTP.Port)
		srv := &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  time.Duration(svc.cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(svc.cfg.HTTP.WriteTimeoutSec) * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(svc.cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}

		logger.Info("Server stopped gracefully")
		return nil
	},
}
