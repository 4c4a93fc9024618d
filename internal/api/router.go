package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vwmedia/siteutil/internal/app"
	iauth "github.com/vwmedia/siteutil/internal/auth"
	"github.com/vwmedia/siteutil/internal/handlers"
	"github.com/vwmedia/siteutil/internal/middleware"
	"github.com/vwmedia/siteutil/internal/monitoring"
	"github.com/vwmedia/siteutil/internal/services"
)

// Services bundles the components served over HTTP. Contact may be nil when
// no admin address is configured.
type Services struct {
	Settings  *services.SettingsService
	TestEmail *services.TestEmailService
	Contact   *services.ContactService
	Posts     *services.PostService
	Sitemap   *services.SitemapService
	Health    *monitoring.HealthManager
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(cfg *app.Config, jwt *iauth.JWTService, svc Services) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	settingsHandler, err := handlers.NewSettingsHandler(svc.Settings, svc.TestEmail)
	if err != nil {
		return nil, err
	}
	postHandler, err := handlers.NewPostHandler(svc.Posts, permalinkFunc(svc.Sitemap))
	if err != nil {
		return nil, err
	}
	sitemapHandler, err := handlers.NewSitemapHandler(svc.Sitemap)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, cfg, handlers.NewHealthHandler(svc.Health))
	registerPublicRoutes(r, cfg, handlers.NewContactHandler(svc.Contact), sitemapHandler)

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	registerSettingsRoutes(api, settingsHandler)
	registerPostRoutes(api, postHandler)
	api.POST("/sitemap/rebuild", sitemapHandler.Rebuild)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func permalinkFunc(sitemap *services.SitemapService) func(string) string {
	if sitemap == nil {
		return nil
	}
	return sitemap.Permalink
}

func registerPublicRoutes(r *gin.Engine, cfg *app.Config, contact *handlers.ContactHandler, sitemap *handlers.SitemapHandler) {
	r.POST("/contact", middleware.RateLimit(cfg.Site.ContactRateLimit, time.Minute), contact.Submit)
	r.GET("/sitemap.xml", sitemap.Serve)
}
