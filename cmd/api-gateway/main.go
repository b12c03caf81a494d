package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-site-api/api/swagger"
	"github.com/noah-isme/faculty-site-api/internal/admin"
	"github.com/noah-isme/faculty-site-api/internal/handler"
	internalmiddleware "github.com/noah-isme/faculty-site-api/internal/middleware"
	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/service"
	"github.com/noah-isme/faculty-site-api/pkg/config"
	"github.com/noah-isme/faculty-site-api/pkg/database"
	"github.com/noah-isme/faculty-site-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-site-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-site-api/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-site-api/pkg/redisclient"
	"github.com/noah-isme/faculty-site-api/pkg/storage"
	"github.com/noah-isme/faculty-site-api/web"
)

// @title Faculty Site API
// @version 1.0.0
// @description Public faculty website content and the admin content management panel.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	loginPath       = "/admin/login"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db, logr)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logr.Sugar().Infow("migrations complete", "applied", applied)
	}

	metrics := service.NewMetricsService()
	gateway := repository.NewGateway(db, metrics)
	validate := validator.New()

	content := service.NewContent(gateway, validate, logr, metrics)
	site := service.NewSiteService(gateway, logr, cfg.Site.HomeNewsLimit)
	dashboard := service.NewDashboardService(gateway, logr)
	exports := service.NewExportService()

	auth, sweeper, err := buildAuth(ctx, cfg, db, validate, logr)
	if err != nil {
		return err
	}
	if sweeper != nil {
		sweeper.Start()
		defer sweeper.Stop()
	}

	if cfg.Admin.BootstrapEmail != "" {
		created, err := auth.Bootstrap(ctx, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logr.Sugar().Infow("bootstrap admin created", "email", cfg.Admin.BootstrapEmail)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.SetHTMLTemplate(web.MustParse())

	mediaStore, err := buildMediaStore(ctx, cfg, r)
	if err != nil {
		return err
	}
	media := service.NewMediaService(mediaStore, service.MediaConfig{
		MaxFileSize:  cfg.Media.MaxFileSize,
		AllowedMIMEs: cfg.Media.AllowedMIMEs,
	}, logr)

	stores := map[string]admin.Store{
		content.Departments.Entity().Key:   admin.NewServiceStore(content.Departments),
		content.Programmes.Entity().Key:    admin.NewServiceStore(content.Programmes),
		content.Staff.Entity().Key:         admin.NewServiceStore(content.Staff),
		content.News.Entity().Key:          admin.NewServiceStore(content.News),
		content.ResearchAreas.Entity().Key: admin.NewServiceStore(content.ResearchAreas),
	}
	cookie := handler.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Public:    handler.NewPublicHandler(site),
		Auth:      handler.NewAuthHandler(auth),
		Dashboard: handler.NewDashboardHandler(dashboard),
		Media:     handler.NewMediaHandler(media),
		Metrics:   handler.NewMetricsHandler(metrics, db),
		Panel:     handler.NewAdminPanelHandler(stores, auth, dashboard, cookie, logr),
		Entities: []handler.EntityRoutes{
			handler.NewEntityHandler[models.Department](content.Departments, exports),
			handler.NewEntityHandler[models.Programme](content.Programmes, exports),
			handler.NewEntityHandler[models.Staff](content.Staff, exports),
			handler.NewEntityHandler[models.News](content.News, exports),
			handler.NewEntityHandler[models.ResearchArea](content.ResearchAreas, exports),
		},
	},
		internalmiddleware.SessionGuard(auth, cfg.Session.CookieName),
		internalmiddleware.PageGuard(auth, cfg.Session.CookieName, loginPath),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}

// buildAuth selects the session store. Expired rows only accumulate in the
// SQL store, so the sweeper is returned for that driver alone.
func buildAuth(ctx context.Context, cfg *config.Config, db *sqlx.DB, validate *validator.Validate, logr *zap.Logger) (*service.AuthService, *service.SessionSweeper, error) {
	authCfg := service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		SessionTTL: cfg.Session.TTL,
		Issuer:     cfg.JWT.Issuer,
	}
	users := repository.NewAdminUserRepository(db)

	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := redisclient.New(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		auth := service.NewAuthService(users, repository.NewRedisSessionStore(client), validate, logr, authCfg)
		return auth, nil, nil
	}

	auth := service.NewAuthService(users, repository.NewSessionRepository(db), validate, logr, authCfg)
	sweeper, err := service.NewSessionSweeper(cfg.Session.SweepSchedule, auth, logr)
	if err != nil {
		return nil, nil, fmt.Errorf("session sweeper: %w", err)
	}
	return auth, sweeper, nil
}

// buildMediaStore picks the upload backend. Local uploads behind a relative
// public URL are served by the router itself.
func buildMediaStore(ctx context.Context, cfg *config.Config, r *gin.Engine) (storage.Store, error) {
	if cfg.Media.Driver == config.MediaDriverS3 {
		store, err := storage.NewS3Storage(ctx, cfg.Media.S3, cfg.Media.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("s3 media store: %w", err)
		}
		return store, nil
	}

	store, err := storage.NewLocalStorage(cfg.Media.Dir, cfg.Media.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("local media store: %w", err)
	}
	if strings.HasPrefix(cfg.Media.PublicBaseURL, "/") {
		r.Static(cfg.Media.PublicBaseURL, store.Dir())
	}
	return store, nil
}
