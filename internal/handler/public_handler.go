package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/response"
)

type siteService interface {
	Home(ctx context.Context) models.HomePage
	Departments(ctx context.Context) []models.Department
	DepartmentBySlug(ctx context.Context, slug string) (*models.Department, bool)
	Programmes(ctx context.Context) service.ProgrammeCatalog
	Research(ctx context.Context) []models.ResearchArea
	News(ctx context.Context) []models.News
}

// PublicHandler serves the visitor-facing read endpoints.
type PublicHandler struct {
	site siteService
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(site siteService) *PublicHandler {
	return &PublicHandler{site: site}
}

// Home godoc
// @Summary Home page content
// @Description Most recent news, newest first.
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /home [get]
func (h *PublicHandler) Home(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.site.Home(c.Request.Context()))
}

// Departments godoc
// @Summary List departments
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *PublicHandler) Departments(c *gin.Context) {
	response.List(c, h.site.Departments(c.Request.Context()))
}

// Department godoc
// @Summary Department by slug
// @Tags Public
// @Produce json
// @Param slug path string true "Department slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{slug} [get]
func (h *PublicHandler) Department(c *gin.Context) {
	dept, ok := h.site.DepartmentBySlug(c.Request.Context(), c.Param("slug"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "department not found"))
		return
	}
	response.JSON(c, http.StatusOK, dept)
}

// Programmes godoc
// @Summary List programmes
// @Description Ordered by level then name. The level filter is applied to the fetched list.
// @Tags Public
// @Produce json
// @Param level query string false "all, Undergraduate or Postgraduate"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /programmes [get]
func (h *PublicHandler) Programmes(c *gin.Context) {
	level := strings.TrimSpace(c.DefaultQuery("level", service.LevelAll))
	switch {
	case strings.EqualFold(level, service.LevelAll),
		strings.EqualFold(level, string(models.LevelUndergraduate)),
		strings.EqualFold(level, string(models.LevelPostgraduate)):
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrBadRequest, "level must be all, Undergraduate or Postgraduate"))
		return
	}
	catalog := h.site.Programmes(c.Request.Context())
	response.List(c, catalog.Filter(level), map[string]interface{}{"level": level})
}

// Research godoc
// @Summary List research areas
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /research [get]
func (h *PublicHandler) Research(c *gin.Context) {
	response.List(c, h.site.Research(c.Request.Context()))
}

// News godoc
// @Summary List news
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /news [get]
func (h *PublicHandler) News(c *gin.Context) {
	response.List(c, h.site.News(c.Request.Context()))
}
