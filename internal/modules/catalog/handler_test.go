package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/repository"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func setupTestRouter(t *testing.T, repo ClassRepository, guards ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(newTestService(t, repo), "Asia/Kolkata")
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"), guards...)
	return r
}

func doJSON(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestHandler_CreateClass(t *testing.T) {
	repo := new(MockClassRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	r := setupTestRouter(t, repo)

	rr, env := doJSON(r, http.MethodPost, "/api/v1/classes", validRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	require.True(t, env.Success)

	var out ClassResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "class-1", out.ID)
	assert.Equal(t, "2026-06-16T06:00:00+05:30", out.DateTime)
	assert.Equal(t, 20, out.AvailableSlots)
	assert.Equal(t, 20, out.TotalSlots)
}

func TestHandler_CreateClass_Errors(t *testing.T) {
	r := setupTestRouter(t, new(MockClassRepository))

	rr, env := doJSON(r, http.MethodPost, "/api/v1/classes", map[string]any{"name": "Yoga", "availableSlots": "many"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	req := validRequest()
	req.Name = ""
	req.AvailableSlots = 0
	rr, env = doJSON(r, http.MethodPost, "/api/v1/classes", req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, map[string]string{"name": "required", "availableSlots": "gt"}, env.Error.Details)

	req = validRequest()
	req.DateTime = "2020-01-01T00:00:00Z"
	rr, env = doJSON(r, http.MethodPost, "/api/v1/classes", req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_TIME", env.Error.Code)
}

func TestHandler_CreateClass_Guarded(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := setupTestRouter(t, new(MockClassRepository), deny)

	rr, _ := doJSON(r, http.MethodPost, "/api/v1/classes", validRequest())
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_ListClasses(t *testing.T) {
	repo := new(MockClassRepository)
	start := time.Date(2026, 6, 16, 0, 30, 0, 0, time.UTC)
	repo.On("List", mock.Anything, repository.ClassFilter{}).Return([]domain.FitnessClass{
		{ID: "a", Name: "Yoga", StartTime: start, TotalSlots: 5, RemainingSlots: 3},
	}, nil)
	r := setupTestRouter(t, repo)

	rr, env := doJSON(r, http.MethodGet, "/api/v1/classes", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []ClassResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "2026-06-16T00:30:00Z", out[0].DateTime)
	assert.Equal(t, 3, out[0].AvailableSlots)

	rr, env = doJSON(r, http.MethodGet, "/api/v1/classes?timezone=IST", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "2026-06-16T06:00:00+05:30", out[0].DateTime)

	rr, env = doJSON(r, http.MethodGet, "/api/v1/classes?timezone=Nowhere/City", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_GetClass_NotFound(t *testing.T) {
	repo := new(MockClassRepository)
	repo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	r := setupTestRouter(t, repo)

	rr, env := doJSON(r, http.MethodGet, "/api/v1/classes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
