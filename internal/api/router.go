// Package api wires together the HTTP routes of the sales backend.
//
// Route grouping philosophy:
//   - /health and /version are public probes and sit outside every middleware
//     concern except recovery.
//   - Feature routes (/clientes, /pedidos) and the audit read surface
//     (/auditoria) share the full middleware chain. The capture interceptor is
//     registered globally; its classifier decides per request whether an
//     entry is recorded, so feature handlers need no audit code beyond the
//     optional before-state stash and per-route annotations.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/api/auditoria"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/api/clientes"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/api/pedidos"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/audit"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/auth"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/config"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/repositories"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/jobs"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/middleware"
)

const version = "0.1.0"

// BackgroundServices holds background goroutines that must be stopped during
// graceful shutdown, after the HTTP server has drained in-flight requests.
type BackgroundServices struct {
	retentionSweeper *jobs.RetentionSweeper
	rateLimiters     []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.retentionSweeper != nil {
		bg.retentionSweeper.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter builds the Gin router and starts the background services.
func NewRouter(cfg *config.Config, database *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	sqlxDB := sqlx.NewDb(database, "postgres")
	auditRepo := repositories.NewAuditRepository(sqlxDB)
	clienteRepo := repositories.NewClienteRepository(sqlxDB)
	pedidoRepo := repositories.NewPedidoRepository(sqlxDB)

	tokens := auth.NewTokenService(cfg.Security.JWTSecret)

	// The primary writer resolves to the repository; the fallback is a raw
	// insert on the same handle so a capture still lands when the repository
	// path fails.
	capture := middleware.NewAuditCapture(
		func() audit.Writer { return audit.WriterFunc(auditRepo.Insert) },
		rawInsertWriter(sqlxDB),
		cfg.Security.TenantHeader,
	)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(requestLogger())
	router.Use(middleware.Identity(tokens, cfg.Security.TenantHeader))
	if cfg.Audit.Enabled {
		router.Use(capture.Handler())
	}

	router.GET("/health", healthHandler(database))
	router.GET("/version", versionHandler())

	var limiters []*middleware.RateLimiter
	apiGroup := router.Group("")
	if cfg.Security.RateLimiting.Enabled {
		rlCfg := middleware.DefaultRateLimitConfig()
		if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
			rlCfg.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
		}
		if cfg.Security.RateLimiting.Burst > 0 {
			rlCfg.BurstSize = cfg.Security.RateLimiting.Burst
		}
		limiter := middleware.NewRateLimiter(rlCfg)
		limiters = append(limiters, limiter)
		apiGroup.Use(middleware.RateLimitMiddleware(limiter))
	}

	auditoriaHandler := auditoria.NewHandler(auditRepo)
	auditoriaGroup := apiGroup.Group("/auditoria")
	{
		auditoriaGroup.GET("", auditoriaHandler.List)
		auditoriaGroup.GET("/estatisticas", auditoriaHandler.Statistics)
		auditoriaGroup.GET("/:id", auditoriaHandler.GetByID)
	}

	clientesHandler := clientes.NewHandler(clienteRepo)
	clientesGroup := apiGroup.Group("/clientes")
	{
		clientesGroup.GET("", clientesHandler.List)
		clientesGroup.GET("/stats", clientesHandler.Stats)
		clientesGroup.GET("/:id", clientesHandler.GetByID)
		clientesGroup.POST("", clientesHandler.Create)
		clientesGroup.PUT("/:id", clientesHandler.Update)
		clientesGroup.DELETE("/:id", clientesHandler.Delete)
	}

	pedidosHandler := pedidos.NewHandler(pedidoRepo, clienteRepo)
	pedidosGroup := apiGroup.Group("/pedidos")
	{
		pedidosGroup.GET("", pedidosHandler.List)
		pedidosGroup.GET("/:id", pedidosHandler.GetByID)
		pedidosGroup.GET("/:id/pdf", pedidosHandler.ExportPDF)
		pedidosGroup.POST("", pedidosHandler.Create)
		pedidosGroup.PUT("/:id", pedidosHandler.Update)
		pedidosGroup.POST("/:id/faturar",
			middleware.Annotate(audit.Options{Action: audit.ActionUpdate, Entity: "Pedido"}),
			pedidosHandler.Faturar)
		pedidosGroup.DELETE("/:id", pedidosHandler.Delete)
		pedidosGroup.DELETE("/rascunhos", middleware.SkipAudit(), pedidosHandler.DescartarRascunhos)
	}

	sweeper := jobs.NewRetentionSweeper(auditRepo, &cfg.Audit)
	if cfg.Audit.Enabled && cfg.Audit.RetentionDays > 0 {
		go sweeper.Start(context.Background())
	}

	bg := &BackgroundServices{
		retentionSweeper: sweeper,
		rateLimiters:     limiters,
	}
	return router, bg
}

// rawInsertWriter builds the degraded-mode writer: a direct INSERT that
// bypasses the repository layer so audit capture survives repository
// initialisation problems.
func rawInsertWriter(db *sqlx.DB) audit.Writer {
	return audit.WriterFunc(func(ctx context.Context, entry *models.AuditLog) error {
		if entry.OccurredAt.IsZero() {
			entry.OccurredAt = time.Now().UTC()
		}
		if entry.TenantID == "" {
			entry.TenantID = audit.DefaultTenant
		}
		var before, after []byte
		if entry.BeforeState != nil {
			before, _ = json.Marshal(entry.BeforeState)
		}
		if entry.AfterState != nil {
			after, _ = json.Marshal(entry.AfterState)
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO audit_logs (tenant_id, actor_id, actor_name, action, entity, entity_id,
				description, before_state, after_state, ip_address, user_agent, endpoint,
				http_method, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			entry.TenantID, entry.ActorID, entry.ActorName, entry.Action, entry.Entity,
			entry.EntityID, entry.Description, before, after, entry.IPAddress,
			entry.UserAgent, entry.Endpoint, entry.HTTPMethod, entry.OccurredAt)
		return err
	})
}

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"erro":   "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     version,
			"api_version": "v1",
		})
	}
}

// requestLogger emits one structured record per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}
