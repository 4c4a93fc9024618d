package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/internal/app/stack"
	"github.com/vwmedia/siteutil/internal/vault"
)

func TestBootstrapRuntimeServesHealthAndSitemap(t *testing.T) {
	dir := t.TempDir()
	cfg := &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "site.sqlite")},
		Auth:     app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "siteutil"}},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
		Site:    app.SiteConfig{BaseURL: "https://www.example.com"},
		Sitemap: app.SitemapConfig{Directory: dir, Schedule: "@daily"},
	}

	rt, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop(),
		stack.WithVaultOptions(vault.WithParams(vault.Params{Time: 1, Memory: 64, Threads: 1})))
	require.NoError(t, err)
	t.Cleanup(func() { rt.Shutdown(context.Background(), zap.NewNop()) })

	// The initial run writes an empty sitemap.
	_, err = os.Stat(filepath.Join(dir, "sitemap.xml"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	rt.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"status":"up"`)

	w = httptest.NewRecorder()
	rt.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBootstrapRuntimeRejectsBadSchedule(t *testing.T) {
	dir := t.TempDir()
	cfg := &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "site.sqlite")},
		Auth:     app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret"}},
		Site:     app.SiteConfig{BaseURL: "https://www.example.com"},
		Sitemap:  app.SitemapConfig{Directory: dir, Schedule: "not a schedule"},
	}

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop(),
		stack.WithVaultOptions(vault.WithParams(vault.Params{Time: 1, Memory: 64, Threads: 1})))
	require.ErrorContains(t, err, "maintenance")
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServeReportsListenFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
	err := serve(context.Background(), srv, time.Second, zap.NewNop())
	require.ErrorContains(t, err, "server error")
}
