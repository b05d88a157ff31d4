package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wikindex/internal/domain/event"
)

var publishCmd = &cobra.Command{
	Use:   "publish [event.json|-]",
	Short: "Validate a mutation event and append it to the Redis stream",
	Long: `Reads one JSON event, for example
  {"kind":"page.saved","namespace":0,"title":"Main Page"}
from the named file or stdin and appends it to the configured stream.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open event: %w", err)
			}
			defer f.Close()
			in = f
		}
		raw, err := io.ReadAll(io.LimitReader(in, 64<<10))
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		var ev event.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if err := ev.Validate(); err != nil {
			return err
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}

		ctx := cmd.Context()
		svc, err := bootstrap(ctx, "publish")
		if err != nil {
			return err
		}
		defer svc.Close()

		src, err := svc.openStream(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		id, err := src.Publish(ctx, payload)
		if err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, ev.Kind)
		return nil
	},
}
