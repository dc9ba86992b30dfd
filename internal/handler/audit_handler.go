package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	audits service.AuditService
}

func NewAuditHandler(audits service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

func (h *AuditHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/api/audit-logs", middleware.RequireAdmin(), h.ListAuditLogs)
}

// ListAuditLogs returns the paginated audit trail
// @Summary      List audit logs (admin)
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Paginated
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.audits.GetAuditLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, logs, total, params.Page, params.Limit))
}
