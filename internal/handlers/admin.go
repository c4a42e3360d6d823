package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/models"
)

func (h *Handler) ListUsers(c *gin.Context) {
	profiles, err := h.admin.ListProfiles(c.Request.Context(), middleware.Auth(c))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"users": profiles})
}

func (h *Handler) ApproveUser(c *gin.Context) {
	respond(c, h.admin.ApproveUser(c.Request.Context(), middleware.Auth(c), c.Param("id")), nil)
}

type roleForm struct {
	Role string `form:"role" json:"role"`
}

func (h *Handler) SetRole(c *gin.Context) {
	var form roleForm
	if err := c.ShouldBind(&form); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	respond(c, h.admin.SetRole(c.Request.Context(), middleware.Auth(c), c.Param("id"), form.Role), nil)
}

func (h *Handler) ListRequests(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	reqs, err := h.admin.ListRequests(c.Request.Context(), middleware.Auth(c), status)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) ApproveRequest(c *gin.Context) {
	respond(c, h.admin.ApproveAccessRequest(c.Request.Context(), middleware.Auth(c), c.Param("id")), nil)
}

type accountForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var form accountForm
	if err := c.ShouldBind(&form); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	res := h.admin.CreateAccountFromRequest(c.Request.Context(), middleware.Auth(c), c.Param("id"), form.Email, form.Password)
	respond(c, res, nil)
}

type settingForm struct {
	Key   string `form:"key" json:"key"`
	Value string `form:"value" json:"value"`
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var form settingForm
	if err := c.ShouldBind(&form); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	respond(c, h.admin.UpdateAppSetting(c.Request.Context(), middleware.Auth(c), form.Key, form.Value), nil)
}
