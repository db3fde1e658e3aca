package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/api"
	"github.com/Domenick1991/farmstay/config"
)

const swaggerDocPath = "/doc.json"

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Chat         *api.ChatHandler
	Reservations *api.ReservationHandler
	Availability *api.AvailabilityHandler
	Stats        *api.StatsHandler
}

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, h Handlers) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg.HTTP, logger, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter builds the gin engine: recovery, request log, CORS, then the API routes.
// Chat is rate limited per client IP; admin routes are not.
func NewRouter(cfg config.HTTPConfig, logger *zap.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.MaxAge = 12 * time.Hour
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	if h.Chat != nil {
		limiter := api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		h.Chat.Register(apiGroup.Group("/chat", limiter.Middleware()))
	}
	if h.Reservations != nil {
		h.Reservations.Register(apiGroup.Group("/reservations"))
	}
	if h.Availability != nil {
		h.Availability.Register(apiGroup.Group("/availability"))
	}
	if h.Stats != nil {
		h.Stats.Register(apiGroup.Group("/admin"))
	}

	if cfg.SwaggerFile != "" {
		ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger" + swaggerDocPath)))
		r.GET("/swagger/*any", func(c *gin.Context) {
			if c.Param("any") == swaggerDocPath {
				c.File(cfg.SwaggerFile)
				return
			}
			ui(c)
		})
	}

	return r
}
