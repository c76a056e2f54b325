package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
}

type memDepartments struct {
	rows map[int64]*models.Department
}

func (m *memDepartments) Create(ctx context.Context, d *models.Department) error {
	for _, existing := range m.rows {
		if existing.Code == d.Code {
			return apperrors.ErrDepartmentAlreadyExists
		}
	}
	d.ID = int64(len(m.rows) + 1)
	m.rows[d.ID] = d
	return nil
}

func (m *memDepartments) Update(ctx context.Context, d *models.Department) error {
	if _, ok := m.rows[d.ID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	m.rows[d.ID] = d
	return nil
}

func (m *memDepartments) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *memDepartments) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	d, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return d, nil
}

func (m *memDepartments) GetAll(ctx context.Context) ([]*models.Department, error) {
	out := make([]*models.Department, 0, len(m.rows))
	for _, d := range m.rows {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDepartments) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.rows[id]
	return ok, nil
}

// withActor stands in for JWTAuth.
func withActor(actor auth.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

func departmentRouter(actor auth.Actor) *gin.Engine {
	store := &memDepartments{rows: map[int64]*models.Department{1: {ID: 1, Code: "CSE", Name: "Computer Science"}}}
	svc := services.NewDepartmentService(store, auth.NewAuthorizationService(auth.NewDefaultPolicy()), zerolog.Nop())
	c := NewDepartmentController(svc)

	r := gin.New()
	g := r.Group("/departments", withActor(actor))
	g.GET("/:id", c.Get)
	g.POST("", c.Create)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDepartmentController_Get(t *testing.T) {
	r := departmentRouter(auth.Actor{UserID: 9, Role: models.RoleStudent, StudentID: 4})

	w := send(r, http.MethodGet, "/departments/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Data    models.Department `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "CSE", resp.Data.Code)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/departments/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/departments/42", "").Code)
}

func TestDepartmentController_Create(t *testing.T) {
	tests := []struct {
		name   string
		actor  auth.Actor
		body   string
		status int
	}{
		{"admin creates", auth.Actor{UserID: 1, Role: models.RoleAdmin}, `{"code":"ECE","name":"Electronics"}`, http.StatusCreated},
		{"duplicate code", auth.Actor{UserID: 1, Role: models.RoleAdmin}, `{"code":"CSE","name":"Again"}`, http.StatusConflict},
		{"bad code", auth.Actor{UserID: 1, Role: models.RoleAdmin}, `{"code":"e c e","name":"Electronics"}`, http.StatusBadRequest},
		{"coordinator forbidden", auth.Actor{UserID: 2, Role: models.RoleCoordinator, DepartmentID: func() *int64 { v := int64(1); return &v }()}, `{"code":"ME","name":"Mechanical"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(departmentRouter(tt.actor), http.MethodPost, "/departments", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestActorOf_MissingActor(t *testing.T) {
	store := &memDepartments{rows: map[int64]*models.Department{}}
	c := NewDepartmentController(services.NewDepartmentService(store, auth.NewAuthorizationService(auth.NewDefaultPolicy()), zerolog.Nop()))
	r := gin.New()
	r.GET("/departments", c.List)

	w := send(r, http.MethodGet, "/departments", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendCSV(t *testing.T) {
	r := gin.New()
	r.GET("/ok", func(ctx *gin.Context) {
		sendCSV(ctx, "students", func(w io.Writer) error {
			_, err := io.WriteString(w, "id,name\n1,Asha\n")
			return err
		})
	})
	r.GET("/fail", func(ctx *gin.Context) {
		sendCSV(ctx, "students", func(w io.Writer) error {
			_, _ = io.WriteString(w, "id,name\n")
			return apperrors.NewForbiddenError("export not allowed")
		})
	})

	w := send(r, http.MethodGet, "/ok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="students-`)
	assert.Equal(t, "id,name\n1,Asha\n", w.Body.String())

	w = send(r, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeForbidden, resp.Error.Code)
}
