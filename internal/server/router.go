package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pm-dashboard/internal/config"
	"pm-dashboard/internal/handlers"
	"pm-dashboard/internal/middleware"
)

const sessionName = "pm_session"

func NewRouter(cfg *config.Config, db *gorm.DB, h *handlers.Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(middleware.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.AppEnv != "local",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// HEALTHCHECK, вне gate
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := r.Group("/")
	app.Use(middleware.Gate(middleware.NewResolver(cfg.JWTSecret), h.Profile(), logger))

	// AUTH
	app.GET("/login", h.ShowLogin)
	app.POST("/login", h.Login)
	app.POST("/logout", h.Logout)
	app.GET("/signup", h.ShowSignup)
	app.POST("/signup", h.Signup)
	app.POST("/signup/request", h.RequestAccess)
	app.GET("/auth/callback", h.AuthCallback)
	app.GET("/pending-approval", h.PendingApproval)

	// ГЛАВНАЯ
	app.GET("/", h.Index)
	app.GET("/activity", h.Activity)

	// ПРОЕКТЫ
	app.GET("/projects", h.Projects.List)
	app.POST("/projects", h.Projects.Create)
	app.GET("/projects/:id", h.Projects.Show)
	app.POST("/projects/:id", h.Projects.Update)
	app.POST("/projects/:id/delete", h.Projects.Delete)
	app.GET("/projects/:id/history", h.Projects.History)

	// ПРОИЗВОДСТВО
	app.GET("/production", h.Orders.List)
	app.POST("/production", h.Orders.Create)
	app.POST("/production/:id", h.Orders.Update)
	app.POST("/production/:id/delete", h.Orders.Delete)
	app.GET("/production/:id/history", h.Orders.History)

	// СЕРВИС
	app.GET("/services", h.Services.List)
	app.POST("/services", h.Services.Create)
	app.POST("/services/:id", h.Services.Update)
	app.POST("/services/:id/delete", h.Services.Delete)
	app.GET("/services/:id/history", h.Services.History)

	app.GET("/timeline", h.Timeline)

	app.GET("/settings/tables/:table_id", h.GetTableSettings)
	app.PUT("/settings/tables/:table_id", h.PutTableSettings)

	// АДМИНКА: gate пускает только админов, действия перепроверяют роль
	admin := app.Group("/admin")
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/approve", h.ApproveUser)
	admin.POST("/users/:id/role", h.SetRole)
	admin.GET("/requests", h.ListRequests)
	admin.POST("/requests/:id/approve", h.ApproveRequest)
	admin.POST("/requests/:id/account", h.CreateAccount)
	admin.POST("/settings", h.UpdateSetting)

	return r
}
