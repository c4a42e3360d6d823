package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/timeline"
)

func (h *Handler) Index(c *gin.Context) {
	render(c, http.StatusOK, gin.H{"counts": h.dashboard.Counts(c.Request.Context())})
}

func (h *Handler) Activity(c *gin.Context) {
	items, err := h.activity.Fetch(c.Request.Context(), middleware.Auth(c).UserID())
	if err != nil {
		h.logger.Warn("activity feed unavailable", zap.Error(err))
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Timeline(c *gin.Context) {
	zoom, err := timeline.ParseZoom(c.Query("zoom"))
	if err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scale, bars := timeline.Layout(h.timeline.Load(c.Request.Context()), zoom)
	render(c, http.StatusOK, gin.H{"scale": scale, "items": bars})
}
