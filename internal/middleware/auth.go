package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/vwmedia/siteutil/internal/auth"
	"github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

// CtxSubjectKey holds the authenticated token subject.
const CtxSubjectKey = "subject"

var errNoBearer = stderrors.New("missing bearer token")

// Auth admits requests bearing a valid admin token.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(jwt, c.GetHeader("Authorization"))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized.WithInternal(err))
			c.Abort()
			return
		}
		if claims.Role != iauth.RoleAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(CtxSubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerClaims(jwt *iauth.JWTService, header string) (*iauth.Claims, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, errNoBearer
	}
	if token = strings.TrimSpace(token); token == "" {
		return nil, errNoBearer
	}
	return jwt.ValidateAccessToken(token)
}
