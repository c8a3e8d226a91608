package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers the load balancer probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// RedisHealth reports whether the fanout bridge can reach Redis. Deploys
// without REDIS_ADDR run single-process and report not_configured.
func (h *Handler) RedisHealth(c *gin.Context) {
	if h.Redis == nil {
		c.JSON(http.StatusOK, gin.H{"status": "not_configured", "details": "REDIS_ADDR not set"})
		return
	}
	if err := h.Redis.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": "connected"})
}

// SyncAllRosters kicks off a sync of every auto-sync roster without waiting
// for the weekly cron. The work runs detached so the request cannot time out.
func (h *Handler) SyncAllRosters(c *gin.Context) {
	go func() {
		if err := h.Sync.Run(context.Background()); err != nil {
			log.Printf("ERROR: Manual roster sync failed: %v", err)
		}
	}()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Roster sync started in background"})
}
