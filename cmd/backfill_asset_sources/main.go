// Command backfill_asset_sources migrates media for every active brand and
// channel, or for the brands named with -brand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type idList []uint

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid brand id %q", v)
	}
	*l = append(*l, uint(id))
	return nil
}

func main() {
	var brands idList
	var channelName, kinds string
	var dryRun bool
	var limit int
	flag.Var(&brands, "brand", "brand id to backfill (repeatable)")
	flag.StringVar(&channelName, "channel", "", "only this channel")
	flag.StringVar(&kinds, "kinds", "image,video", "asset kinds to migrate")
	flag.BoolVar(&dryRun, "dry-run", false, "print pending sources without migrating")
	flag.IntVar(&limit, "limit", 0, "limit number of brand/channel pairs processed")
	flag.Parse()

	var only ads.Channel
	if channelName != "" {
		c, err := ads.ParseChannel(channelName)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		only = c
	}
	var kindList []ads.AssetKind
	for _, k := range strings.Split(kinds, ",") {
		kind, err := ads.ParseAssetKind(strings.TrimSpace(k))
		if err != nil || kind == ads.AssetText {
			fmt.Printf("invalid kind %q\n", k)
			os.Exit(2)
		}
		kindList = append(kindList, kind)
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	application, err := app.New(ctx, log)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	assocs, err := application.Repos.PlatformInfo.ListActiveAssociations(dbctx.Context{Ctx: ctx})
	if err != nil {
		fmt.Printf("load associations: %v\n", err)
		os.Exit(1)
	}
	wanted := map[uint]bool{}
	for _, id := range brands {
		wanted[id] = true
	}

	processed, failed := 0, 0
	for _, as := range assocs {
		ch := as.Channel()
		if ch == ads.ChannelOmnichannel || (only != ads.ChannelUnknown && ch != only) {
			continue
		}
		if len(wanted) > 0 && !wanted[as.BrandID] {
			continue
		}
		if limit > 0 && processed >= limit {
			break
		}
		processed++
		for _, kind := range kindList {
			if dryRun {
				pending, err := application.Services.Media.UnprocessedSources(ctx, as.BrandID, ch, kind)
				if err != nil {
					fmt.Printf("brand=%d channel=%s kind=%s error=%v\n", as.BrandID, ch, kind, err)
					failed++
					continue
				}
				fmt.Printf("brand=%d channel=%s kind=%s pending=%d\n", as.BrandID, ch, kind, len(pending))
				continue
			}
			rep, err := application.Services.Media.Migrate(ctx, as.BrandID, ch, kind)
			if err != nil {
				fmt.Printf("brand=%d channel=%s kind=%s error=%v\n", as.BrandID, ch, kind, err)
				failed++
				continue
			}
			failed += rep.Failed
			fmt.Printf("brand=%d channel=%s kind=%s migrated=%d failed=%d\n", as.BrandID, ch, kind, rep.Migrated, rep.Failed)
		}
	}
	fmt.Printf("done pairs=%d failed=%d dry_run=%v\n", processed, failed, dryRun)
	if failed > 0 {
		os.Exit(1)
	}
}
