package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/report-tracker-api/internal/errors"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"go.uber.org/zap"
)

// Authenticator resolves the caller from a bearer token or a session user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
	ResolveUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth accepts an "Authorization: Bearer" token and falls back to the
// session cookie. The user is reloaded on every request so a deleted account
// or a changed role takes effect immediately.
func RequireAuth(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveCaller(c, auth)
		if err != nil {
			if !errors.Is(err, policy.ErrUnauthenticated) {
				log.Error("Failed to resolve caller", zap.Error(err))
				apierrors.InternalError(c, "")
				return
			}
			apierrors.Unauthorized(c, "")
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyActor, &policy.Actor{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

func resolveCaller(c *gin.Context, auth Authenticator) (*models.User, error) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		return auth.Authenticate(c.Request.Context(), token)
	}

	session := sessions.Default(c)
	userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
	if !ok {
		return nil, policy.ErrUnauthenticated
	}
	return auth.ResolveUser(c.Request.Context(), userID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireAdmin(GetActor(c)); err != nil {
			if errors.Is(err, policy.ErrUnauthenticated) {
				apierrors.Unauthorized(c, "")
				return
			}
			apierrors.Forbidden(c, "Admin only")
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated caller, or nil outside RequireAuth.
func GetActor(c *gin.Context) *policy.Actor {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil
	}
	actor, _ := v.(*policy.Actor)
	return actor
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

func toUint64(v any) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// ParseID reads a positive integer path parameter. It writes the 400 response
// itself and returns false when the value is malformed.
func ParseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
