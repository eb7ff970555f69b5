package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
)

var accountsCmd = &cobra.Command{
	Use:     "accounts <channel>",
	GroupID: "data",
	Short:   "List active ad accounts with their brand on a channel",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := ads.ParseChannel(args[0])
		if err != nil {
			return err
		}
		idsOnly, _ := cmd.Flags().GetBool("brand-ids")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if idsOnly {
				ids, err := a.Repos.PlatformInfo.BrandIDsForChannel(dbctx.Context{Ctx: ctx}, channel)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ids)
			}
			details, err := a.Services.Assets.AccountDetails(ctx, channel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), details)
		})
	},
}

var brandsCmd = &cobra.Command{
	Use:     "brands",
	GroupID: "data",
	Short:   "List active brands",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			list, err := a.Services.Brands.ListActive(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		})
	},
}

func init() {
	accountsCmd.Flags().Bool("brand-ids", false, "print only the ids of brands with an account on the channel")
	rootCmd.AddCommand(accountsCmd, brandsCmd)
}
