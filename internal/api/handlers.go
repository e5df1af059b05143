package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dashlab/labctl/internal/compose"
	"github.com/dashlab/labctl/internal/models"
)

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	historyStatus := "disabled"
	if s.store != nil {
		historyStatus = "ok"
		if err := s.store.Ping(c.Request.Context()); err != nil {
			historyStatus = "unavailable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"history":        historyStatus,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

// listEnvironments handles GET /api/v1/environments
func (s *Server) listEnvironments(c *gin.Context) {
	environments := make([]models.Environment, 0, len(s.cfg.Environments))
	for name, env := range s.cfg.Environments {
		environments = append(environments, models.Environment{
			Name:        name,
			ComposeFile: env.ComposeFile,
			Services:    env.Services,
			Probe:       env.Probe,
		})
	}
	sort.Slice(environments, func(i, j int) bool {
		return environments[i].Name < environments[j].Name
	})

	c.JSON(http.StatusOK, gin.H{"data": environments})
}

// listRuns handles GET /api/v1/runs
func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "Run history is disabled")
		return
	}

	page, limit := s.parsePagination(c)

	runs, total, err := s.store.ListRuns(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []*models.Run{}
	}

	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Data:       runs,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// getRun handles GET /api/v1/runs/:id
func (s *Server) getRun(c *gin.Context) {
	if s.store == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "Run history is disabled")
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Run not found")
		return
	}

	c.JSON(http.StatusOK, run)
}

// listServices handles GET /api/v1/environments/:name/services
func (s *Server) listServices(c *gin.Context) {
	env, err := s.cfg.Environment(c.Param("name"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	runner, err := newPsRunner(compose.Options{
		Bin:         s.cfg.ComposeBin,
		ComposeFile: env.ComposeFile,
	})
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to create compose runner: "+err.Error())
		return
	}

	states, err := runner.Ps(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list services: "+err.Error())
		return
	}
	if states == nil {
		states = []models.ServiceState{}
	}

	c.JSON(http.StatusOK, gin.H{"data": states})
}
