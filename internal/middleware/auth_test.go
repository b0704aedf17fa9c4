package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"go.uber.org/zap"
)

type fakeAuth struct {
	users map[uint64]*models.User
	token map[string]uint64
}

func (f fakeAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, ok := f.token[token]
	if !ok {
		return nil, policy.ErrUnauthenticated
	}
	return f.ResolveUser(ctx, id)
}

func (f fakeAuth) ResolveUser(_ context.Context, id uint64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, policy.ErrUnauthenticated
	}
	return u, nil
}

func newTestRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.POST("/login/:id", func(c *gin.Context) {
		id, ok := ParseID(c, "id")
		if !ok {
			return
		}
		s := sessions.Default(c)
		s.Set(constants.ContextKeyUserID, id)
		if err := s.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	api := r.Group("/api", RequireAuth(auth, zap.NewNop()))
	api.GET("/me", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	api.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	auth := fakeAuth{
		users: map[uint64]*models.User{
			1: {ID: 1, Role: models.RoleAdmin},
			2: {ID: 2, Role: models.RoleUser},
		},
		token: map[string]uint64{"admin-token": 1, "user-token": 2, "ghost-token": 3},
	}
	r := newTestRouter(auth)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no credentials", "/api/me", "", http.StatusUnauthorized},
		{"bearer token", "/api/me", "Bearer user-token", http.StatusOK},
		{"lowercase scheme", "/api/me", "bearer user-token", http.StatusOK},
		{"unknown token", "/api/me", "Bearer nope", http.StatusUnauthorized},
		{"deleted user", "/api/me", "Bearer ghost-token", http.StatusUnauthorized},
		{"admin route as user", "/api/admin", "Bearer user-token", http.StatusForbidden},
		{"admin route as admin", "/api/admin", "Bearer admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAuth_SessionFallback(t *testing.T) {
	auth := fakeAuth{users: map[uint64]*models.User{2: {ID: 2, Role: models.RoleUser}}}
	r := newTestRouter(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/2", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"role":"user"}`, w.Body.String())
}

func TestParseID(t *testing.T) {
	r := newTestRouter(fakeAuth{})
	for _, raw := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+raw, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}
