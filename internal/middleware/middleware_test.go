package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pm-dashboard/internal/models"
)

const secret = "test-secret"

func profiles(m map[string]*models.Profile) ProfileFunc {
	return func(ctx context.Context, userID string) (*models.Profile, error) {
		if p, ok := m[userID]; ok {
			return p, nil
		}
		return nil, errors.New("connection refused")
	}
}

func newEngine(p ProfileFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte(secret))))
	r.Use(Gate(NewResolver(secret), p, zap.NewNop()))

	ok := func(c *gin.Context) { c.String(http.StatusOK, Auth(c).UserID()) }
	r.GET("/login", ok)
	r.POST("/login", func(c *gin.Context) {
		_ = SignIn(c, &models.Identity{ID: c.Query("id"), Email: "x@example.com"})
		c.Status(http.StatusNoContent)
	})
	r.GET("/projects", ok)
	r.GET("/admin/users", ok)
	r.GET("/pending-approval", ok)
	return r
}

func get(r http.Handler, path, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := GenerateToken(userID, userID+"@example.com", secret, time.Now())
	require.NoError(t, err)
	return tok
}

func TestGate(t *testing.T) {
	r := newEngine(profiles(map[string]*models.Profile{
		"member":  {ID: "member", Role: models.RoleMember, IsApproved: true},
		"pending": {ID: "pending", Role: models.RoleMember},
		"admin":   {ID: "admin", Role: models.RoleAdmin},
	}))

	tests := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
	}{
		{"anonymous protected", "/projects", "", http.StatusFound, "/login"},
		{"anonymous login page", "/login", "", http.StatusOK, ""},
		{"garbage token", "/projects", "not-a-jwt", http.StatusFound, "/login"},
		{"approved member", "/projects", token(t, "member"), http.StatusOK, ""},
		{"member on admin", "/admin/users", token(t, "member"), http.StatusFound, "/"},
		{"approved on login", "/login", token(t, "member"), http.StatusFound, "/"},
		{"unapproved", "/projects", token(t, "pending"), http.StatusFound, "/pending-approval"},
		{"unapproved on pending page", "/pending-approval", token(t, "pending"), http.StatusOK, ""},
		{"admin always approved", "/admin/users", token(t, "admin"), http.StatusOK, ""},
		{"profile lookup fails", "/projects", token(t, "ghost"), http.StatusFound, "/pending-approval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestGateSetsAuthContext(t *testing.T) {
	r := newEngine(profiles(map[string]*models.Profile{
		"member": {ID: "member", IsApproved: true},
	}))
	w := get(r, "/projects", token(t, "member"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member", w.Body.String())
}

func TestSessionCookie(t *testing.T) {
	r := newEngine(profiles(map[string]*models.Profile{
		"member": {ID: "member", IsApproved: true},
	}))

	req := httptest.NewRequest(http.MethodPost, "/login?id=member", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = get(r, "/projects", "", cookies...)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member", w.Body.String())
}

func TestParseToken(t *testing.T) {
	tok, err := GenerateToken("u1", "u1@example.com", secret, time.Now())
	require.NoError(t, err)

	uid, email, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, "u1@example.com", email)

	_, _, err = ParseToken(tok, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateToken("u1", "", secret, time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	_, _, err = ParseToken(expired, secret)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", ExtractToken(req))
}
