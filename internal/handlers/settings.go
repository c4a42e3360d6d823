package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/settings"
)

func (h *Handler) GetTableSettings(c *gin.Context) {
	row, err := h.settings.Get(c.Request.Context(), middleware.Auth(c).UserID(), c.Param("table_id"))
	if err != nil {
		renderError(c, apperror.Store(err))
		return
	}
	render(c, http.StatusOK, gin.H{"settings": row})
}

// PutTableSettings: принимаем сразу, пишем в БД после паузы debounce
func (h *Handler) PutTableSettings(c *gin.Context) {
	var prefs settings.Prefs
	if err := c.ShouldBindJSON(&prefs); err != nil {
		renderError(c, apperror.Invalid("invalid settings payload"))
		return
	}
	h.debouncer.Update(middleware.Auth(c).UserID(), c.Param("table_id"), prefs)
	c.Status(http.StatusAccepted)
}
