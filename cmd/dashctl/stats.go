package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "health",
	Short:   "Print the latest insight date per brand and platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		htmlOut, _ := cmd.Flags().GetString("html")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			st, err := a.Services.Stats.InsightStats(ctx)
			if err != nil {
				return err
			}
			if htmlOut == "" {
				return printJSON(cmd.OutOrStdout(), st)
			}
			f, err := os.Create(htmlOut)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := services.RenderStatsHTML(f, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", htmlOut, len(st.Rows))
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:     "report",
	GroupID: "health",
	Short:   "Manage the published insight stats report",
}

var reportPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render the stats report and upload it to the report bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			url, err := a.Services.Stats.PublishReport(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().String("html", "", "write the HTML report to this file instead of printing JSON")
	reportCmd.AddCommand(reportPublishCmd)
	rootCmd.AddCommand(statsCmd, reportCmd)
}
