package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[int64]*models.User

func (f fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

type fakeProfiles map[int64]*models.StudentProfile

func (f fakeProfiles) GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	p, ok := f[userID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return p, nil
}

func newTestJWT() *pkgauth.JWTService {
	return pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "placement-test",
	})
}

func tokenFor(t *testing.T, jwt *pkgauth.JWTService, userID int64, role string) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(pkgauth.TokenSubject{UserID: userID, Email: "u@college.edu", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func setupRouter(jwt *pkgauth.JWTService) *gin.Engine {
	dept := int64(3)
	users := fakeUsers{
		1:  {ID: 1, Email: "admin@college.edu", RoleType: models.RoleAdmin, Status: models.UserStatusActive},
		2:  {ID: 2, Email: "coord@college.edu", RoleType: models.RoleCoordinator, Status: models.UserStatusActive, DepartmentID: &dept},
		3:  {ID: 3, Email: "gone@college.edu", RoleType: models.RoleCoordinator, Status: models.UserStatusSuspended, DepartmentID: &dept},
		20: {ID: 20, Email: "s@college.edu", RoleType: models.RoleStudent, Status: models.UserStatusActive},
	}
	profiles := fakeProfiles{20: {ID: 7, UserID: 20, DepartmentID: 3, BatchYear: 2025}}
	m := NewAuthMiddleware(jwt, users, profiles, auth.NewDefaultPolicy())

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		actor, _ := auth.ActorFromContext(c.Request.Context())
		c.JSON(http.StatusOK, actor)
	})
	r.POST("/companies/:id/approve", m.JWTAuth(), m.RequirePermission(auth.ResourceCompanies, auth.ActionApprove), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuth(t *testing.T) {
	jwt := newTestJWT()
	r := setupRouter(jwt)

	tests := []struct {
		name   string
		token  string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage token", "not-a-token", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"wrong signature", tokenFor(t, pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "placement-test"}), 1, "admin"), http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"unknown user", tokenFor(t, jwt, 99, "admin"), http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"suspended user", tokenFor(t, jwt, 3, "coordinator"), http.StatusForbidden, dto.ErrorCodeAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", tt.token)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuth_ActorComesFromStore(t *testing.T) {
	jwt := newTestJWT()
	r := setupRouter(jwt)

	// The token claims admin; the store says student.
	w := do(r, http.MethodGet, "/me", tokenFor(t, jwt, 20, "admin"))
	require.Equal(t, http.StatusOK, w.Code)

	var actor auth.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
	assert.Equal(t, models.RoleStudent, actor.Role)
	assert.Equal(t, int64(7), actor.StudentID)
	assert.Equal(t, 2025, actor.BatchYear)
	require.NotNil(t, actor.DepartmentID)
	assert.Equal(t, int64(3), *actor.DepartmentID)
}

func TestRequirePermission(t *testing.T) {
	jwt := newTestJWT()
	r := setupRouter(jwt)

	w := do(r, http.MethodPost, "/companies/5/approve", tokenFor(t, jwt, 2, "coordinator"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, errorCode(t, w))

	w = do(r, http.MethodPost, "/companies/5/approve", tokenFor(t, jwt, 1, "admin"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("outside scope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"ineligible", apperrors.NewIneligibleError([]string{"cgpa"}), http.StatusBadRequest, dto.ErrorCodeIneligible},
		{"transition", apperrors.NewIllegalTransitionError("selected", "withdrawn"), http.StatusBadRequest, dto.ErrorCodeIllegalTransition},
		{"validation", apperrors.NewValidationError("deadline", "must be in the future"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"conflict", apperrors.ErrDuplicateApplication, http.StatusConflict, dto.ErrorCodeConflict},
		{"unknown", errors.New("pool closed"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestHandleAPIError_CarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewIneligibleError([]string{"cgpa", "batch"}))

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				FailedCriteria []string `json:"failedCriteria"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"cgpa", "batch"}, resp.Error.Details.FailedCriteria)
	assert.Contains(t, resp.Error.Message, "eligibility")
}

func TestValidateRequest(t *testing.T) {
	r := gin.New()
	r.POST("/apply", ValidateRequest[dto.ApplyRequest](), func(c *gin.Context) {
		body, ok := ValidatedBody[dto.ApplyRequest](c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"jobId": body.JobID})
	})

	req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))

	req = httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(`{"jobId": 10}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jobId":10}`, w.Body.String())
}
