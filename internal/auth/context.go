package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
)

const CtxClaims = "auth_claims"

func SetClaims(c *gin.Context, claims *domain.Claims) {
	c.Set(CtxClaims, claims)
}

// ClaimsFrom returns the claims stored by the auth middleware.
func ClaimsFrom(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok && claims != nil
}

// UserID is uuid.Nil when the request is unauthenticated.
func UserID(c *gin.Context) uuid.UUID {
	if claims, ok := ClaimsFrom(c); ok {
		return claims.UserID
	}
	return uuid.Nil
}
