package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ilpslab/authhub/internal/auth"
	"github.com/ilpslab/authhub/internal/config"
	"github.com/ilpslab/authhub/internal/http/handlers"
	"github.com/ilpslab/authhub/internal/http/middlewares"
	"github.com/ilpslab/authhub/internal/observability"
	"github.com/ilpslab/authhub/internal/repo/postgres"
	"github.com/ilpslab/authhub/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // requests are tiny JSON documents

// NewRouter wires repositories, the token manager, the auth service and
// every handler onto a gin engine.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.ServiceName, cfg.AccessTokenLifetime)

	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// wire up repositories and the orchestrator

	usersRepo := postgres.NewUsersRepo(pool, prom)
	credentialsRepo := postgres.NewCredentialsRepo(pool, prom)
	svc := service.NewAuthService(usersRepo, credentialsRepo, tokens)

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(prom.GinHandleMiddleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	}

	// health + metrics

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/health", h.Health)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// auth routes

	authHandler := handlers.NewAuthHandler(svc)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.Login)
	r.GET("/verify", authHandler.Verify)

	// user directory, token-guarded; flag updates are admin-only

	authMW := middlewares.NewAuthMiddleware(svc)
	usersHandler := handlers.NewUsersHandler(usersRepo)

	users := r.Group("/users", authMW.RequireAuth())
	users.GET("", usersHandler.List)
	users.GET("/:uuid", usersHandler.GetByID)
	users.PATCH("/:uuid", authMW.RequireAdmin(), usersHandler.UpdateFlags)

	return r, nil
}
