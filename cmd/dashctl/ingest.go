package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:     "ingest <batch.json>...",
	GroupID: "data",
	Short:   "Upsert connector batches into the store",
	Long: `Load one or more batch documents and upsert campaigns, ad groups, creatives,
ads, assets and insights in parent-before-child order.

Each batch names its account and channel. Re-running a batch is a no-op for
rows whose content did not change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batches := make([]*pipeline.Batch, 0, len(args))
		for _, path := range args {
			b, err := pipeline.LoadBatchFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			batches = append(batches, b)
		}
		failed := 0
		err := withApp(cmd, func(ctx context.Context, a *app.App) error {
			for i, b := range batches {
				rep, err := a.Pipeline.Process(ctx, b)
				if err != nil {
					return fmt.Errorf("%s: %w", args[i], err)
				}
				failed += rep.Failed()
				if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d records failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
