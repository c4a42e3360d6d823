package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pm-dashboard/internal/access"
	"pm-dashboard/internal/metrics"
	"pm-dashboard/internal/models"
)

const authContextKey = "auth"

type ProfileFunc func(ctx context.Context, userID string) (*models.Profile, error)

// Gate: пропускаем или редиректим каждый запрос. Профиль читаем заново
// на каждый запрос, чтобы одобрение и смена роли действовали сразу.
func Gate(resolver *Resolver, profiles ProfileFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := resolver.Resolve(c)

		var profile *models.Profile
		if identity != nil {
			p, err := profiles(c.Request.Context(), identity.ID)
			if err != nil {
				// профиль не прочитался: считаем пользователя неподтверждённым
				logger.Warn("profile lookup failed",
					zap.String("user_id", identity.ID),
					zap.Error(err),
				)
			} else {
				profile = p
			}
		}

		d := access.Decide(identity, profile, c.Request.URL.Path)
		metrics.RecordGateDecision(string(d.Outcome))
		if !d.Allowed() {
			c.Redirect(http.StatusFound, d.Target)
			c.Abort()
			return
		}

		c.Set(authContextKey, access.AuthContext{Identity: identity, Profile: profile})
		c.Next()
	}
}

// Auth: контекст из Gate; вне gate пустой
func Auth(c *gin.Context) access.AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if a, ok := v.(access.AuthContext); ok {
			return a
		}
	}
	return access.AuthContext{}
}
