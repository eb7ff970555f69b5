package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/http/response"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type BrandHandler struct {
	log    *logger.Logger
	brands services.BrandService
	status services.StatusService
}

func NewBrandHandler(log *logger.Logger, brands services.BrandService, status services.StatusService) *BrandHandler {
	return &BrandHandler{
		log:    log.With("handler", "BrandHandler"),
		brands: brands,
		status: status,
	}
}

// GET /api/brands
func (h *BrandHandler) ListBrands(c *gin.Context) {
	list, err := h.brands.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error("ListBrands failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"brands": list})
}

// GET /api/brands/:id
func (h *BrandHandler) GetBrand(c *gin.Context) {
	id, err := brandIDParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	brand, err := h.brands.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"brand": brand})
}

// GET /api/brands/:id/status?channel=
func (h *BrandHandler) GetBrandStatus(c *gin.Context) {
	id, err := brandIDParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	channel, err := channelQuery(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	st, err := h.status.BrandStatus(c.Request.Context(), id, channel)
	if err != nil {
		h.log.Warn("GetBrandStatus failed", "brand_id", id, "channel", channel.String(), "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, st)
}
