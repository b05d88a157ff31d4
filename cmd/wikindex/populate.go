package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/usecase/populate"
)

var populateForce bool

var populateCmd = &cobra.Command{
	Use:       "populate <title|category|user|all>",
	Short:     "Rebuild index tables from the primary store",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"title", "category", "user", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := parseJobs(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := bootstrap(ctx, "populate")
		if err != nil {
			return err
		}
		defer svc.Close()
		ctx = logpkg.ContextWithLogger(ctx, svc.logger)

		for _, job := range jobs {
			res, err := svc.app.Populate.Run(ctx, job, populateForce)
			if err != nil {
				return fmt.Errorf("populate %s: %w", job, err)
			}
			if res.NoTable {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: index table missing, run migrations first\n", job)
				continue
			}
			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: already populated (use --force to rebuild)\n", job)
				continue
			}
			svc.logger.Info("Population finished",
				zap.String("job", string(job)),
				zap.Int64("rows", res.Rows),
				zap.Duration("duration", res.Duration),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows in %s\n", job, res.Rows, res.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	populateCmd.Flags().BoolVar(&populateForce, "force", false, "rebuild even when the job already ran")
}

func parseJobs(arg string) ([]populate.Job, error) {
	if arg == "all" {
		return populate.Jobs(), nil
	}
	job, err := populate.ParseJob(arg)
	if err != nil {
		return nil, err
	}
	return []populate.Job{job}, nil
}
