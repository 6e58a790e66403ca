package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jozzzzep/shrink"
	"github.com/jozzzzep/shrink/bitmask"
	"github.com/jozzzzep/shrink/internal/config"
	"github.com/jozzzzep/shrink/internal/observability"
	"github.com/jozzzzep/shrink/internal/store"
)

const version = "0.1.0"

// Service serves the codec and buffer-store HTTP API. Binary buffers
// cross the wire base64-encoded; the store's own adapter governs only
// the at-rest encoding.
type Service struct {
	Name    string
	Addr    string
	Started time.Time

	store         *store.Store
	maskLimits    bitmask.Limits
	restoreLimits shrink.Limits

	router   *gin.Engine
	basePath string
}

func New(cfg config.ServiceConfig, st *store.Store) *Service {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Service{
		Name:          cfg.Name,
		Addr:          cfg.Addr,
		Started:       time.Now(),
		store:         st,
		maskLimits:    maskLimits(cfg.Limits),
		restoreLimits: restoreLimits(cfg.Limits),
		router:        r,
	}
}

// Attach mounts the service on an existing engine under basePath,
// for embedding next to other route groups.
func Attach(name string, router *gin.Engine, basePath string, st *store.Store) *Service {
	return &Service{
		Name:          name,
		Started:       time.Now(),
		store:         st,
		maskLimits:    bitmask.DefaultLimits(),
		restoreLimits: shrink.DefaultLimits(),
		router:        router,
		basePath:      basePath,
	}
}

func (s *Service) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Service) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.Addr)
}

func (s *Service) routes() gin.IRouter {
	if s.basePath == "" {
		return s.router
	}
	return s.router.Group(s.basePath)
}

func maskLimits(cfg config.LimitsConfig) bitmask.Limits {
	if cfg.MaxMaskBits == 0 {
		return bitmask.DefaultLimits()
	}
	return bitmask.Limits{MaxBits: cfg.MaxMaskBits}
}

func restoreLimits(cfg config.LimitsConfig) shrink.Limits {
	if cfg.MaxRestoredBytes == 0 {
		return shrink.DefaultLimits()
	}
	return shrink.Limits{MaxRestoredBytes: cfg.MaxRestoredBytes}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
