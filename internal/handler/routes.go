package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Public    *PublicHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Media     *MediaHandler
	Metrics   *MetricsHandler
	Panel     *AdminPanelHandler
	Entities  []EntityRoutes
}

// EntityRoutes is implemented by EntityHandler for any model type.
type EntityRoutes interface {
	Register(rg *gin.RouterGroup)
}

// RegisterRoutes mounts the public API, the guarded admin API and the HTML
// admin panel. apiGuard and pageGuard admit signed-in administrators.
func RegisterRoutes(router *gin.Engine, apiPrefix string, h Handlers, apiGuard, pageGuard gin.HandlerFunc) {
	if h.Metrics != nil {
		router.GET("/health", h.Metrics.Health)
		router.GET("/ready", h.Metrics.Ready)
		router.GET("/metrics", h.Metrics.Prometheus)
	}

	api := router.Group(apiPrefix)

	if h.Public != nil {
		api.GET("/home", h.Public.Home)
		api.GET("/departments", h.Public.Departments)
		api.GET("/departments/:slug", h.Public.Department)
		api.GET("/programmes", h.Public.Programmes)
		api.GET("/research", h.Public.Research)
		api.GET("/news", h.Public.News)
	}

	if h.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", apiGuard, h.Auth.Me)
		auth.POST("/logout", apiGuard, h.Auth.Logout)
	}

	secured := api.Group("/admin")
	secured.Use(apiGuard)
	if h.Dashboard != nil {
		secured.GET("/dashboard", h.Dashboard.Counts)
	}
	if h.Media != nil {
		secured.POST("/media", h.Media.Upload)
	}
	for _, entity := range h.Entities {
		entity.Register(secured)
	}

	if h.Panel != nil {
		router.GET("/admin/login", h.Panel.LoginPage)
		router.POST("/admin/login", h.Panel.Login)

		pages := router.Group("/admin")
		pages.Use(pageGuard)
		pages.GET("", h.Panel.Dashboard)
		pages.POST("/logout", h.Panel.Logout)
		pages.GET("/:entity", h.Panel.List)
		pages.POST("/:entity", h.Panel.Create)
		pages.GET("/:entity/new", h.Panel.New)
		pages.GET("/:entity/:id/edit", h.Panel.Edit)
		pages.POST("/:entity/:id", h.Panel.Update)
		pages.GET("/:entity/:id/delete", h.Panel.ConfirmDelete)
		pages.POST("/:entity/:id/delete", h.Panel.Delete)
	}
}
