package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/http/response"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type StatusHandler struct {
	log    *logger.Logger
	status services.StatusService
}

func NewStatusHandler(log *logger.Logger, status services.StatusService) *StatusHandler {
	return &StatusHandler{log: log.With("handler", "StatusHandler"), status: status}
}

// GET /api/status
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	rows, err := h.status.AllStatuses(c.Request.Context())
	if err != nil {
		h.log.Error("ListStatuses failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"statuses": rows})
}
