package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/lessons-api/internal/store"
)

func (h *Handler) Health(c *gin.Context) {
	if p, ok := h.Store.(store.Pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			h.Log.Warn().Err(err).Msg("health check: store unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
