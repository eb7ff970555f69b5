package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/http/response"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type StatsHandler struct {
	log   *logger.Logger
	stats services.StatsService
}

func NewStatsHandler(log *logger.Logger, stats services.StatsService) *StatsHandler {
	return &StatsHandler{log: log.With("handler", "StatsHandler"), stats: stats}
}

// GET /api/stats/insights
func (h *StatsHandler) InsightStats(c *gin.Context) {
	st, err := h.stats.InsightStats(c.Request.Context())
	if err != nil {
		h.log.Error("InsightStats failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, st)
}

// GET /api/report serves the last published report. ?fresh=1 renders the
// current snapshot instead.
func (h *StatsHandler) Report(c *gin.Context) {
	if c.Query("fresh") == "1" {
		st, err := h.stats.InsightStats(c.Request.Context())
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := services.RenderStatsHTML(c.Writer, st); err != nil {
			h.log.Error("render report failed", "error", err)
		}
		return
	}
	body, err := h.stats.Report(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// POST /api/report
func (h *StatsHandler) PublishReport(c *gin.Context) {
	url, err := h.stats.PublishReport(c.Request.Context())
	if err != nil {
		h.log.Error("PublishReport failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}
