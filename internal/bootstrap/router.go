package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/EstateEmpire/estateempire-backend/internal/api/http"
	"github.com/EstateEmpire/estateempire-backend/internal/api/http/middleware"
	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	authhttp "github.com/EstateEmpire/estateempire-backend/internal/auth/http"
	authmw "github.com/EstateEmpire/estateempire-backend/internal/auth/middleware"
	propertyhttp "github.com/EstateEmpire/estateempire-backend/internal/properties/http"
	txhttp "github.com/EstateEmpire/estateempire-backend/internal/transactions/http"
)

// AuthService serves the auth endpoints and authenticates bearer tokens.
type AuthService interface {
	authhttp.Service
	authmw.Authenticator
}

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Redis          *redis.Client

	Auth         AuthService
	Properties   propertyhttp.Service
	Transactions txhttp.Service
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	requireAuth := authmw.RequireAuth(dep.Auth)
	requireAgent := authmw.RequireRole(domain.RoleAgent)
	requireClient := authmw.RequireRole(domain.RoleClient)

	authhttp.New(dep.Auth).Register(r, requireAuth)
	propertyhttp.New(dep.Properties).Register(r, requireAuth, requireAgent)
	txhttp.New(dep.Transactions).Register(r, requireAuth, requireClient, requireAgent)

	return r
}
