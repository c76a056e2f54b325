package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

// Gin context keys set by JWTAuth.
const (
	ActorKey  = "actor"
	UserIDKey = "userID"
)

// UserLoader loads the account behind a token.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// ProfileLoader loads the student profile of a student account.
type ProfileLoader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *pkgauth.JWTService
	users      UserLoader
	profiles   ProfileLoader
	policy     *auth.PolicyTable
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *pkgauth.JWTService, users UserLoader, profiles ProfileLoader, policy *auth.PolicyTable) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		profiles:   profiles,
		policy:     policy,
	}
}

func abortWith(c *gin.Context, status int, code dto.ErrorCode, message, details string) {
	detail := dto.NewErrorDetail(code, message)
	if details != "" {
		detail = detail.WithDetails(details)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// JWTAuth validates the bearer token, reloads the account and stores the
// resulting auth.Actor in both the gin and the request context. Role and
// department always come from the store, never from the token.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		tokenString, err := pkgauth.ExtractBearerToken(authHeader)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, pkgauth.ErrExpiredToken) {
				abortWith(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Authentication failed", "Token has expired")
				return
			}
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token")
			return
		}

		ctx := c.Request.Context()
		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				abortWith(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Authentication failed", "Account no longer exists")
				return
			}
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		if !user.IsActive() {
			abortWith(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled", "")
			return
		}

		actor := auth.Actor{
			UserID:       user.ID,
			Email:        user.Email,
			Role:         user.RoleType,
			DepartmentID: user.DepartmentID,
		}
		if user.RoleType == models.RoleStudent {
			profile, err := m.profiles.GetByUserID(ctx, user.ID)
			switch {
			case err == nil:
				actor.StudentID = profile.ID
				actor.BatchYear = profile.BatchYear
				dept := profile.DepartmentID
				actor.DepartmentID = &dept
			case !errors.Is(err, apperrors.ErrResourceNotFound):
				HandleAPIError(c, err)
				c.Abort()
				return
			}
		}

		c.Set(ActorKey, actor)
		c.Set(UserIDKey, actor.UserID)
		c.Request = c.Request.WithContext(auth.WithActor(ctx, actor))
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the actor's role holds action on
// resource. It must run after JWTAuth.
func (m *AuthMiddleware) RequirePermission(resource auth.Resource, action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "User information not found")
			return
		}
		if !m.policy.HasPermission(actor.Role, resource, action) {
			abortWith(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Access denied",
				"Role "+string(actor.Role)+" may not "+string(action)+" "+string(resource))
			return
		}
		c.Next()
	}
}

// CurrentActor returns the actor JWTAuth stored in the gin context.
func CurrentActor(c *gin.Context) (auth.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return auth.Actor{}, false
	}
	actor, ok := v.(auth.Actor)
	return actor, ok
}
