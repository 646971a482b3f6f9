package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ohfixit/helperd/internal/auth"
	"github.com/ohfixit/helperd/internal/catalog"
	"github.com/ohfixit/helperd/internal/helper"
	"github.com/ohfixit/helperd/internal/probes"
)

type executeRequest struct {
	ActionID   string         `json:"actionId" binding:"required"`
	Parameters map[string]any `json:"parameters"`
}

type rollbackRequest struct {
	ActionID   string `json:"actionId" binding:"required"`
	RollbackID string `json:"rollbackId" binding:"required"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/status", s.handleStatus)
	s.router.POST("/screenshot", s.handleScreenshot)
	s.router.POST("/automation/execute", s.handleExecute)
	s.router.POST("/automation/rollback", s.handleRollback)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := s.router.Group("/health")
	health.GET("/scan", s.handleScan)
	macos := health.Group("/macos")
	macos.GET("/updates", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.Updates()) })
	macos.GET("/firewall", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.Firewall()) })
	macos.GET("/av", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.Antivirus()) })
	macos.GET("/filevault", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.DiskEncryption()) })
	macos.GET("/timemachine", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.Backup()) })
	macos.GET("/sip", func(c *gin.Context) { c.JSON(http.StatusOK, s.prober.PlatformIntegrity()) })
}

func (s *Server) handleStatus(c *gin.Context) {
	health := s.service.Health()
	actions := make([]string, 0, s.service.Catalog().Len())
	for _, def := range s.service.Catalog().List() {
		actions = append(actions, def.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": health.Version,
		"uptime":  s.service.Uptime().String(),
		"capabilities": []string{
			"automation",
			"rollback",
			"health_probes",
			"system_info",
		},
		"actions": actions,
	})
}

// handleScreenshot is a deliberate placeholder: it proves the helper is
// installed and reachable without implementing capture.
func (s *Server) handleScreenshot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   false,
		"format":    "png",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"error":     "Not implemented",
		"details":   "Helper installed and reachable, but screenshot capture is not yet implemented.",
	})
}

func (s *Server) handleExecute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.service.Execute(c.Request.Context(), req.ActionID, req.Parameters, bearerToken(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRollback(c *gin.Context) {
	var req rollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.service.Rollback(c.Request.Context(), req.ActionID, req.RollbackID, bearerToken(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleScan(c *gin.Context) {
	c.JSON(http.StatusOK, probes.Scan(c.Request.Context(), "helperd"))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, helper.ErrNotReversible), errors.Is(err, helper.ErrWrongPlatform):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
