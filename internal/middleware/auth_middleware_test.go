package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/vwmedia/siteutil/internal/auth"
)

func newTestJWT(t *testing.T) *iauth.JWTService {
	t.Helper()
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)
	return jwtSvc
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{Subject: "ops@example.com"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(CtxSubjectKey)})
	})

	cases := map[string]struct {
		header string
		status int
	}{
		"missing header":     {"", http.StatusUnauthorized},
		"wrong scheme":       {"Basic " + token, http.StatusUnauthorized},
		"empty bearer":       {"Bearer   ", http.StatusUnauthorized},
		"garbage token":      {"Bearer not-a-token", http.StatusUnauthorized},
		"lowercase scheme":   {"bearer " + token, http.StatusOK},
		"padded valid token": {"  Bearer  " + token + " ", http.StatusOK},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)

			if tc.status == http.StatusUnauthorized {
				require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				return
			}
			var payload map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			require.Equal(t, "ops@example.com", payload["subject"])
		})
	}
}

func TestAuthMiddlewareRejectsNonAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{Subject: "viewer", Role: "viewer"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
