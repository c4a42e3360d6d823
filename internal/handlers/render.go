package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pm-dashboard/internal/actions"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/middleware"
)

// render: обёртка над c.JSON, которая в каждый ответ кладёт текущего пользователя.
func render(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	auth := middleware.Auth(c)
	if auth.Authenticated() {
		user := gin.H{"id": auth.UserID(), "email": auth.Email()}
		if auth.Profile != nil {
			user["role"] = auth.Profile.Role
			user["full_name"] = auth.Profile.FullName
		}
		data["current_user"] = user
	}

	c.JSON(status, data)
}

func renderError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	render(c, apperror.HTTPStatus(kind), gin.H{"code": kind, "error": err.Error()})
}

// respond: результат действия; ошибка в той же форме, чтобы показать её у формы
func respond(c *gin.Context, res actions.Result, extra gin.H) {
	status := http.StatusOK
	if !res.Success {
		status = apperror.HTTPStatus(res.Code)
	}
	data := gin.H{"result": res}
	for k, v := range extra {
		data[k] = v
	}
	if res.Success && c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Refresh", "true")
	}
	render(c, status, data)
}
