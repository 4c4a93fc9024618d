package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vwmedia/siteutil/internal/handlers/testutil"
)

func TestHealthEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	resp := env.Request(http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// No sitemap yet: degraded, still served.
	resp = env.Request(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var report struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
		Checks  []struct {
			Component string `json:"component"`
			Status    string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	require.False(t, report.Success)
	require.Equal(t, "degraded", report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "up", report.Checks[0].Status)

	resp = env.Request(http.MethodPost, "/api/sitemap/rebuild", nil, env.AdminToken())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	require.True(t, report.Success)
	require.Equal(t, "up", report.Status)
}
