package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/http/response"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type AccountHandler struct {
	log    *logger.Logger
	assets services.AssetService
}

func NewAccountHandler(log *logger.Logger, assets services.AssetService) *AccountHandler {
	return &AccountHandler{log: log.With("handler", "AccountHandler"), assets: assets}
}

// GET /api/accounts?channel=
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	details, err := h.assets.AccountDetails(c.Request.Context(), channel)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"accounts": details})
}

// GET /api/accounts/:account/assets?channel=&kinds=image,video
func (h *AccountHandler) ListMedia(c *gin.Context) {
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	kinds, err := kindsQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	media, err := h.assets.MediaForAccount(c.Request.Context(), c.Param("account"), channel, kinds)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": media})
}

// GET /api/accounts/:account/ads?channel=&video_id= or &image_id=
func (h *AccountHandler) ListAdsForAsset(c *gin.Context) {
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	videoID := strings.TrimSpace(c.Query("video_id"))
	imageID := strings.TrimSpace(c.Query("image_id"))
	var kind ads.AssetKind
	var assetID string
	switch {
	case videoID != "" && imageID != "":
		response.RespondErr(c, ads.NewError(ads.CodeValidation, "http.ListAdsForAsset", "pass video_id or image_id, not both", nil))
		return
	case videoID != "":
		kind, assetID = ads.AssetVideo, videoID
	case imageID != "":
		kind, assetID = ads.AssetImage, imageID
	default:
		response.RespondErr(c, ads.NewError(ads.CodeValidation, "http.ListAdsForAsset", "video_id or image_id is required", nil))
		return
	}
	list, err := h.assets.AdsForAsset(c.Request.Context(), c.Param("account"), channel, kind, assetID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ads": list})
}

// GET /api/accounts/:account/ads/:ad/assets?channel=
func (h *AccountHandler) ListAdAssets(c *gin.Context) {
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.assets.AssetsForAd(c.Request.Context(), c.Param("account"), channel, c.Param("ad"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/accounts/:account/latest-insight?channel=
func (h *AccountHandler) LatestInsight(c *gin.Context) {
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	last, err := h.assets.LatestInsightDate(c.Request.Context(), c.Param("account"), channel)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var date *string
	if last != nil {
		s := last.Format(ads.DateLayout)
		date = &s
	}
	response.RespondOK(c, gin.H{"account_id": c.Param("account"), "channel": channel, "latest_insight": date})
}
