package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/api"
	"github.com/vwmedia/siteutil/internal/app"
	iauth "github.com/vwmedia/siteutil/internal/auth"
	sharedtestutil "github.com/vwmedia/siteutil/internal/database/testutil"
	"github.com/vwmedia/siteutil/internal/monitoring"
	"github.com/vwmedia/siteutil/internal/monitoring/checks"
	"github.com/vwmedia/siteutil/internal/services"
	"github.com/vwmedia/siteutil/internal/smtpconfig"
	"github.com/vwmedia/siteutil/internal/vault"
	"github.com/vwmedia/siteutil/pkg/mail"
	"github.com/vwmedia/siteutil/pkg/response"
)

// AdminEmail receives contact form submissions in handler tests.
const AdminEmail = "owner@example.com"

// Delivery is one message captured by Mailer together with the transport the
// pre-send hooks produced for it.
type Delivery struct {
	Message   mail.Message
	Transport mail.Transport
}

// Mailer runs messages through a real dispatcher's hooks and records them
// instead of dialing out. Err, when set, is returned from every Send.
type Mailer struct {
	Dispatcher *mail.Dispatcher

	mu   sync.Mutex
	sent []Delivery
	Err  error
}

func (m *Mailer) Send(ctx context.Context, msg mail.Message, opts ...mail.SendOption) error {
	t := m.Dispatcher.Prepare(ctx, msg)
	options := mail.ResolveSendOptions(opts...)
	if t.Debug && options.Transcript != nil {
		fmt.Fprintf(options.Transcript, "dial %s:%s\n220 test ESMTP ready\n", t.Host, t.Port)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Delivery{Message: msg, Transport: t})
	return m.Err
}

// Sent returns a copy of every recorded delivery.
func (m *Mailer) Sent() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Delivery(nil), m.sent...)
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T       *testing.T
	DB      *gorm.DB
	Router  *gin.Engine
	JWT     *iauth.JWTService
	Config  *app.Config
	Mailer  *Mailer
	Store   *services.OptionStore
	Sitemap *services.SitemapService
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSecret := "test-suite-super-secret-key-32-bytes!!"
	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: jwtSecret, Issuer: "test-suite", TTL: time.Hour},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
		Email: app.EmailConfig{
			Fallback: app.SMTPConfig{From: "wordpress@example.com", FromName: "Example Site"},
		},
		Site: app.SiteConfig{
			Name:             "Example",
			BaseURL:          "https://www.example.com",
			AdminEmail:       AdminEmail,
			ContactRateLimit: 100,
		},
		Sitemap: app.SitemapConfig{Directory: t.TempDir(), MaxAge: time.Hour},
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	sealer, err := vault.NewSealer([]byte("0123456789abcdef0123456789abcdef"), vault.WithParams(vault.Params{Time: 1, Memory: 64, Threads: 1}))
	require.NoError(t, err)

	store, err := services.NewOptionStore(db, services.WithSealer(sealer))
	require.NoError(t, err)

	dispatcher, err := mail.NewDispatcher(cfg.Email.SMTPSettings(), mail.WithHooks(smtpconfig.NewHook(store)))
	require.NoError(t, err)
	mailer := &Mailer{Dispatcher: dispatcher}

	settingsSvc, err := services.NewSettingsService(store)
	require.NoError(t, err)
	testEmailSvc, err := services.NewTestEmailService(mailer)
	require.NoError(t, err)
	contactSvc, err := services.NewContactService(mailer, cfg.Site.AdminEmail)
	require.NoError(t, err)
	sitemapSvc, err := services.NewSitemapService(db, cfg.Site.BaseURL, cfg.Sitemap.Directory)
	require.NoError(t, err)
	postSvc, err := services.NewPostService(db, services.WithSitemapBuilder(sitemapSvc))
	require.NoError(t, err)

	router, err := api.NewRouter(cfg, jwtSvc, api.Services{
		Settings:  settingsSvc,
		TestEmail: testEmailSvc,
		Contact:   contactSvc,
		Posts:     postSvc,
		Sitemap:   sitemapSvc,
		Health: monitoring.NewHealthManager(
			checks.Database(db, time.Second),
			checks.Sitemap(sitemapSvc.Path(), cfg.Sitemap.MaxAge, nil),
		),
	})
	require.NoError(t, err)

	return &Env{
		T:       t,
		DB:      db,
		Router:  router,
		JWT:     jwtSvc,
		Config:  cfg,
		Mailer:  mailer,
		Store:   store,
		Sitemap: sitemapSvc,
	}
}

// AdminToken issues a bearer token carrying the admin role.
func (e *Env) AdminToken() string {
	e.T.Helper()
	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{Subject: "admin@example.com"})
	require.NoError(e.T, err)
	return token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
	Notices []response.Notice   `json:"notices"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req, token)
}

// PostForm submits values urlencoded, the way a browser form would.
func (e *Env) PostForm(path string, values url.Values, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, token)
}

func (e *Env) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
