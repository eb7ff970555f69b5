package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

var statusCmd = &cobra.Command{
	Use:     "status [brand-id channel]",
	GroupID: "health",
	Short:   "Show Airbyte and insight freshness status",
	Long: `Without arguments, print the status of every active brand and channel.
With a brand id and channel, print that pair only.

  dashctl status
  dashctl status 42 google`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("want no arguments or <brand-id> <channel>, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rows, err := a.Services.Status.AllStatuses(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			})
		}
		brandID, channel, err := brandAndChannel(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			st, err := a.Services.Status.BrandStatus(ctx, brandID, channel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		})
	},
}

func brandAndChannel(rawBrand, rawChannel string) (uint, ads.Channel, error) {
	id, err := strconv.ParseUint(rawBrand, 10, 32)
	if err != nil || id == 0 {
		return 0, ads.ChannelUnknown, fmt.Errorf("invalid brand id %q", rawBrand)
	}
	channel, err := ads.ParseChannel(rawChannel)
	if err != nil {
		return 0, ads.ChannelUnknown, err
	}
	return uint(id), channel, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
