package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

func brandIDParam(c *gin.Context) (uint, error) {
	raw := strings.TrimSpace(c.Param("id"))
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, ads.NewError(ads.CodeValidation, "http.brandID", "invalid brand id "+strconv.Quote(raw), err)
	}
	return uint(n), nil
}

func channelQuery(c *gin.Context) (ads.Channel, error) {
	raw := strings.TrimSpace(c.Query("channel"))
	if raw == "" {
		return ads.ChannelUnknown, ads.NewError(ads.CodeValidation, "http.channel", "channel query parameter is required", nil)
	}
	return ads.ParseChannel(raw)
}

// kindsQuery reads a comma separated kinds list, image and video by default.
func kindsQuery(c *gin.Context) ([]ads.AssetKind, error) {
	raw := strings.TrimSpace(c.Query("kinds"))
	if raw == "" {
		return []ads.AssetKind{ads.AssetImage, ads.AssetVideo}, nil
	}
	var out []ads.AssetKind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := ads.ParseAssetKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
