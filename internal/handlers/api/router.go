// Package api exposes machine state, shift analytics and cache control over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

type Handler struct {
	monitoring interfaces.MonitoringUsecase
	analytics  interfaces.AnalyticsUsecase
	log        *zap.Logger
}

func NewHandler(monitoring interfaces.MonitoringUsecase, analytics interfaces.AnalyticsUsecase, log *zap.Logger) *Handler {
	return &Handler{
		monitoring: monitoring,
		analytics:  analytics,
		log:        log.Named("api"),
	}
}

// NewRouter builds the gin engine. ws may be nil to disable live push.
func NewRouter(h *Handler, ws gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.GET("/machines", h.listMachines)
		api.GET("/machines/:code", h.getMachine)
		api.POST("/machines/refresh", h.refresh)

		api.GET("/shifts", h.shiftReport)
		api.POST("/shift-cache", h.cacheControl)
	}

	if ws != nil {
		r.GET("/ws", ws)
	}
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (h *Handler) health(c *gin.Context) {
	snap := h.monitoring.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"state":        snap.State,
		"lastSyncedAt": snap.LastSyncedAt,
	})
}

func (h *Handler) listMachines(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitoring.Snapshot())
}

func (h *Handler) getMachine(c *gin.Context) {
	m, ok := h.monitoring.Machine(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "machine_not_found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) refresh(c *gin.Context) {
	if err := h.monitoring.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "fetch_failed",
			"message":  err.Error(),
			"snapshot": h.monitoring.Snapshot(),
		})
		return
	}
	c.JSON(http.StatusOK, h.monitoring.Snapshot())
}

func (h *Handler) shiftReport(c *gin.Context) {
	report, err := h.analytics.ShiftReport(c.Request.Context(), c.Query("machineCode"), c.Query("orderCode"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) cacheControl(c *gin.Context) {
	var cmd models.CacheCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err := h.analytics.CacheControl(c.Request.Context(), cmd); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "action": cmd.Action})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var missing *models.MissingParametersError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters", "params": missing.Params})
	case errors.Is(err, models.ErrUnknownCacheAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_action", "message": err.Error()})
	case errors.Is(err, models.ErrUpstreamQuery):
		h.log.Error("upstream query failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_query_failed", "message": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
