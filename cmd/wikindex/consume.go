package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wikindex/internal/transport/stream"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Apply mutation events from the Redis stream until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := bootstrap(ctx, "consume")
		if err != nil {
			return err
		}
		defer svc.Close()
		svc.watchExclusions(ctx)

		src, err := svc.openStream(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		return stream.NewConsumer(src, svc.app.Events, stream.Options{
			BatchSize: svc.cfg.Events.BatchSize,
			Block:     time.Duration(svc.cfg.Events.BlockMs) * time.Millisecond,
		}, svc.logger).Run(ctx)
	},
}
