package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"pm-dashboard/internal/models"
)

// ключи cookie-сессии
const (
	SessionUserID = "user_id"
	SessionEmail  = "email"
)

// Resolver: кто вызывает, по cookie-сессии или bearer-токену
type Resolver struct {
	secret string
}

func NewResolver(jwtSecret string) *Resolver {
	return &Resolver{secret: jwtSecret}
}

// Resolve: nil при любых отсутствующих/битых данных, запрос не роняем
func (r *Resolver) Resolve(c *gin.Context) (identity *models.Identity) {
	defer func() {
		if recover() != nil {
			identity = nil
		}
	}()

	sess := sessions.Default(c)
	if uid, ok := sess.Get(SessionUserID).(string); ok && uid != "" {
		email, _ := sess.Get(SessionEmail).(string)
		return &models.Identity{ID: uid, Email: email}
	}

	if tok := ExtractToken(c.Request); tok != "" {
		uid, email, err := ParseToken(tok, r.secret)
		if err != nil {
			return nil
		}
		return &models.Identity{ID: uid, Email: email}
	}
	return nil
}

// SignIn: кладём пользователя в cookie-сессию
func SignIn(c *gin.Context, identity *models.Identity) error {
	sess := sessions.Default(c)
	sess.Set(SessionUserID, identity.ID)
	sess.Set(SessionEmail, identity.Email)
	return sess.Save()
}

func SignOut(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}
