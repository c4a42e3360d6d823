package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pm-dashboard/internal/access"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/models"
)

func (h *Handler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, gin.H{"page": "login"})
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Login: cookie-сессия + bearer-токен для API-клиентов
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		renderError(c, apperror.Invalid("invalid form data"))
		return
	}

	identity, err := h.accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		renderError(c, err)
		return
	}
	h.signIn(c, identity)
}

func (h *Handler) signIn(c *gin.Context, identity *models.Identity) {
	if err := middleware.SignIn(c, identity); err != nil {
		h.logger.Error("session save failed", zap.String("user_id", identity.ID), zap.Error(err))
		renderError(c, apperror.Store(err))
		return
	}
	token, err := middleware.GenerateToken(identity.ID, identity.Email, h.jwtSecret, h.now())
	if err != nil {
		h.logger.Error("token signing failed", zap.String("user_id", identity.ID), zap.Error(err))
		renderError(c, apperror.Store(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": identity.ID, "token": token, "redirect": access.PathHome})
}

func (h *Handler) Logout(c *gin.Context) {
	_ = middleware.SignOut(c)
	c.Redirect(http.StatusFound, access.PathLogin)
}

func (h *Handler) ShowSignup(c *gin.Context) {
	render(c, http.StatusOK, gin.H{"page": "signup"})
}

type signupForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	FullName string `form:"full_name" json:"full_name"`
}

// Signup: неодобренная учётка и сразу вход; дальше gate держит на странице ожидания
func (h *Handler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		respond(c, invalid(err), nil)
		return
	}

	res := h.accounts.Signup(c.Request.Context(), form.Email, form.Password, form.FullName)
	if !res.Success {
		respond(c, res, nil)
		return
	}
	identity, err := h.accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		respond(c, res, gin.H{"redirect": access.PathLogin})
		return
	}
	if err := middleware.SignIn(c, identity); err != nil {
		h.logger.Warn("session save after signup failed", zap.String("user_id", identity.ID), zap.Error(err))
	}
	respond(c, res, gin.H{"redirect": access.PathPendingApproval})
}

type accessRequestForm struct {
	Email string `form:"email" json:"email"`
}

func (h *Handler) RequestAccess(c *gin.Context) {
	var form accessRequestForm
	if err := c.ShouldBind(&form); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	respond(c, h.accounts.RequestAccess(c.Request.Context(), form.Email), nil)
}

// AuthCallback: токен из ссылки в письме меняем на cookie-сессию
func (h *Handler) AuthCallback(c *gin.Context) {
	uid, email, err := middleware.ParseToken(c.Query("token"), h.jwtSecret)
	if err != nil {
		c.Redirect(http.StatusFound, access.PathLogin)
		return
	}
	if err := middleware.SignIn(c, &models.Identity{ID: uid, Email: email}); err != nil {
		h.logger.Warn("session save in callback failed", zap.String("user_id", uid), zap.Error(err))
		c.Redirect(http.StatusFound, access.PathLogin)
		return
	}
	c.Redirect(http.StatusFound, access.PathHome)
}

func (h *Handler) PendingApproval(c *gin.Context) {
	render(c, http.StatusOK, gin.H{
		"page":    "pending-approval",
		"message": "Your account is waiting for administrator approval.",
	})
}
