package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jess-lam/joby-interview/internal/config"
	"github.com/jess-lam/joby-interview/internal/db"
	"github.com/jess-lam/joby-interview/internal/middleware"
	"github.com/jess-lam/joby-interview/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	cfg    config.Config
	log    *zap.Logger
	db     *pgxpool.Pool
	router *gin.Engine
}

// New wires the store, migrations and router. DATABASE_URL=memory:// runs
// without Postgres.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	var issues repo.IssueRepo
	if cfg.DB.InMemory() {
		log.Warn("using in-memory issue store; data is lost on restart")
		issues = repo.NewMemIssueRepo()
	} else {
		if cfg.DB.AutoMigrate {
			if err := db.Migrate(cfg.DB.URL); err != nil {
				return nil, err
			}
			log.Info("migrations applied")
		}
		pool, err := db.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		a.db = pool
		issues = repo.NewPGIssueRepo(pool)
	}

	router, err := newRouter(cfg, log, issues)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.router = router
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newRouter(cfg config.Config, log *zap.Logger, issues repo.IssueRepo) (*gin.Engine, error) {
	if cfg.App.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.Recovery(log),
	)
	if len(cfg.CORS.Origins) > 0 {
		corsCfg, err := corsConfig(cfg.CORS)
		if err != nil {
			return nil, err
		}
		r.Use(cors.New(corsCfg))
	}

	Setup(r, cfg, log, issues)
	return r, nil
}

func corsConfig(c config.CORSConfig) (cors.Config, error) {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range c.Origins {
		if o == "*" {
			// Credentials cannot be combined with a wildcard origin.
			cc.AllowAllOrigins = true
			return cc, nil
		}
	}
	cc.AllowOrigins = c.Origins
	cc.AllowCredentials = true
	if err := cc.Validate(); err != nil {
		return cors.Config{}, fmt.Errorf("cors: %w", err)
	}
	return cc, nil
}
