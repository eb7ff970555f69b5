package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

var mediaCmd = &cobra.Command{
	Use:     "media",
	GroupID: "data",
	Short:   "Copy platform media into managed storage",
}

var mediaPendingCmd = &cobra.Command{
	Use:   "pending <brand-id> <channel> <image|video>",
	Short: "List asset sources not yet under managed storage",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, channel, kind, err := mediaArgs(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			pending, err := a.Services.Media.UnprocessedSources(ctx, brandID, channel, kind)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pending)
		})
	},
}

var mediaMigrateCmd = &cobra.Command{
	Use:   "migrate <brand-id> <channel> <image|video>",
	Short: "Download unprocessed sources, upload them and repoint the asset rows",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, channel, kind, err := mediaArgs(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			rep, err := a.Services.Media.Migrate(ctx, brandID, channel, kind)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if rep.Failed > 0 {
				return fmt.Errorf("%d of %d assets failed", rep.Failed, rep.Failed+rep.Migrated)
			}
			return nil
		})
	},
}

var mediaFacesCmd = &cobra.Command{
	Use:   "count-faces <brand-id> <channel>",
	Short: "Detect faces in migrated images that have no count yet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, channel, err := brandAndChannel(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			out, err := a.Services.Media.CountFaces(ctx, brandID, channel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var mediaVideoFacesCmd = &cobra.Command{
	Use:   "set-video-faces <source-url> <faces>",
	Short: "Record a face count for every video row with this source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var faces int
		if _, err := fmt.Sscanf(args[1], "%d", &faces); err != nil {
			return fmt.Errorf("invalid face count %q", args[1])
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Services.Media.SetVideoFaces(ctx, args[0], faces)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", n)
			return nil
		})
	},
}

var mediaDescribePendingCmd = &cobra.Command{
	Use:   "pending-descriptions <brand-id> <channel>",
	Short: "List images that have no generated description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, channel, err := brandAndChannel(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			pending, err := a.Services.Media.PendingDescriptions(ctx, brandID, channel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pending)
		})
	},
}

var mediaDescribeCmd = &cobra.Command{
	Use:   "set-description <source-url> <description>",
	Short: "Record a description for every image row with this source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Services.Media.SetImageDescription(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", n)
			return nil
		})
	},
}

var mediaAudioPendingCmd = &cobra.Command{
	Use:   "pending-audio <brand-id> <channel>",
	Short: "List videos whose audio track has not been checked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, channel, err := brandAndChannel(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			pending, err := a.Services.Media.PendingAudioDetection(ctx, brandID, channel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pending)
		})
	},
}

var mediaAudioCmd = &cobra.Command{
	Use:   "set-video-audio <source-url> <true|false>",
	Short: "Record whether every video row with this source has audio",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		present, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid audio flag %q", args[1])
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Services.Media.SetVideoAudio(ctx, args[0], present)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", n)
			return nil
		})
	},
}

func mediaArgs(args []string) (uint, ads.Channel, ads.AssetKind, error) {
	brandID, channel, err := brandAndChannel(args[0], args[1])
	if err != nil {
		return 0, ads.ChannelUnknown, "", err
	}
	kind, err := ads.ParseAssetKind(args[2])
	if err != nil {
		return 0, ads.ChannelUnknown, "", err
	}
	if kind == ads.AssetText {
		return 0, ads.ChannelUnknown, "", fmt.Errorf("text assets have no media to migrate")
	}
	return brandID, channel, kind, nil
}

func init() {
	mediaCmd.AddCommand(mediaPendingCmd, mediaMigrateCmd, mediaFacesCmd, mediaVideoFacesCmd,
		mediaDescribePendingCmd, mediaDescribeCmd, mediaAudioPendingCmd, mediaAudioCmd)
	rootCmd.AddCommand(mediaCmd)
}
