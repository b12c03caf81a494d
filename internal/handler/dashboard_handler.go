package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/pkg/response"
)

type dashboardService interface {
	Counts(ctx context.Context) models.ContentCounts
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Counts godoc
// @Summary Admin dashboard counts
// @Description Row counts per content table. A table that cannot be counted reports 0.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Counts(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Counts(c.Request.Context()))
}
