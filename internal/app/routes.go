package app

import (
	"context"
	"net/http"
	"time"

	_ "github.com/jess-lam/joby-interview/docs"
	"github.com/jess-lam/joby-interview/internal/config"
	"github.com/jess-lam/joby-interview/internal/handlers"
	"github.com/jess-lam/joby-interview/internal/repo"
	"github.com/jess-lam/joby-interview/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine. Issue routes are served
// both at the root and under /api/v1.
func Setup(r *gin.Engine, cfg config.Config, log *zap.Logger, issues repo.IssueRepo) {
	issueSvc := service.NewIssueService(issues)
	issueHandler := handlers.NewIssueHandler(issueSvc, log)

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(issueSvc))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	registerIssueRoutes(&r.RouterGroup, issueHandler)
	registerIssueRoutes(r.Group("/api/v1"), issueHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Issue Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(svc *service.IssueService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerIssueRoutes(g *gin.RouterGroup, h *handlers.IssueHandler) {
	g.GET("/issues", h.List)
	g.POST("/issues", h.Create)
	g.GET("/issues/:id", h.GetByID)
	g.PATCH("/issues/:id", h.Update)
	g.DELETE("/issues/:id", h.Delete)
}
