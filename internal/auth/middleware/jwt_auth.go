package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/api/http/apierr"
	"github.com/EstateEmpire/estateempire-backend/internal/auth"
	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Claims, error)
}

// RequireAuth validates the bearer token and stores the caller's claims.
// Missing, malformed, expired and revoked tokens all get the same 401.
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			apierr.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenRevoked) {
				apierr.Unauthorized(c, "invalid or expired token")
				return
			}
			apierr.Respond(c, http.StatusServiceUnavailable, apierr.CodeUnavailable, "authentication is temporarily unavailable", err)
			return
		}

		auth.SetClaims(c, claims)
		logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"user_id": claims.UserID,
			"role":    claims.Role,
		}).Debug("authenticated request")

		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			apierr.Unauthorized(c, "authentication required")
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		apierr.Forbidden(c, "your account type cannot perform this action")
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
