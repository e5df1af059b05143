package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dashlab/labctl/internal/compose"
	"github.com/dashlab/labctl/internal/config"
	"github.com/dashlab/labctl/internal/history"
	"github.com/dashlab/labctl/internal/models"
)

// psRunner is the compose operation the services endpoint needs.
type psRunner interface {
	Ps(ctx context.Context) ([]models.ServiceState, error)
}

// Server exposes stack status, run history and the built documentation
// over HTTP.
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	store      history.Store
	corsOrigin string
	startedAt  time.Time
}

// NewServer creates a new status API server
func NewServer(cfg *config.Config, store history.Store, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:     gin.New(),
		cfg:        cfg,
		store:      store,
		corsOrigin: corsOrigin,
		startedAt:  time.Now(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)
		v1.GET("/environments", s.listEnvironments)
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
		v1.GET("/environments/:name/services", s.listServices)
	}

	// Built documentation tree; regenerated by `labctl docs build`.
	s.router.Static("/docs", s.cfg.Docs.OutputDir)
}

// Run starts the HTTP server on the given address
func (s *Server) Run(address string) error {
	return s.router.Run(address)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// corsMiddleware applies the configured CORS origin to every response.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.corsOrigin != "" {
			c.Header("Access-Control-Allow-Origin", s.corsOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// errorResponse sends a JSON error with the given status code
func (s *Server) errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, models.ErrorResponse{Error: message})
}

// parsePagination extracts page and limit query parameters with defaults
func (s *Server) parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return page, limit
}

// newPsRunner is swapped out in tests.
var newPsRunner = func(opts compose.Options) (psRunner, error) {
	return compose.NewRunner(opts)
}
