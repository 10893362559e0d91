package catalog

import (
	"errors"
	"net/http"

	"fitnessbooking/internal/pkg/response"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	// zone used when echoing a freshly created class
	createZone string
}

func NewHandler(service *Service, createZone string) *Handler {
	return &Handler{service: service, createZone: createZone}
}

// RegisterRoutes mounts the class endpoints. Extra handlers guard class
// creation only; listing stays public.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, createGuards ...gin.HandlerFunc) {
	create := append(append([]gin.HandlerFunc{}, createGuards...), h.CreateClass)
	rg.POST("/classes", create...)
	rg.GET("/classes", h.ListClasses)
	rg.GET("/classes/:id", h.GetClass)
}

// CreateClass schedules a new fitness class.
//
// @Summary Create class
// @Description Schedule a class; dateTime without an offset is read in the given timezone
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateClassRequest true "Class details"
// @Success 201 {object} map[string]interface{} "Created class"
// @Failure 400 {object} map[string]interface{} "Validation error or invalid time"
// @Failure 401 {object} map[string]interface{} "Missing or invalid staff token"
// @Router /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := toClassResponse(class, h.createZone)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// ListClasses returns scheduled classes ordered by start time.
//
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param timezone query string false "IANA zone for dateTime (e.g. America/New_York)"
// @Param upcoming query bool false "Only classes that have not started"
// @Success 200 {object} map[string]interface{} "Classes"
// @Failure 400 {object} map[string]interface{} "Unknown timezone"
// @Router /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	var q ListClassesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters")
		return
	}
	if q.Timezone != "" {
		if _, err := tz.LoadZone(q.Timezone); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
			return
		}
	}

	classes, err := h.service.ListClasses(c.Request.Context(), q.Upcoming)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]ClassResponse, 0, len(classes))
	for i := range classes {
		item, err := toClassResponse(&classes[i], q.Timezone)
		if err != nil {
			h.writeError(c, err)
			return
		}
		out = append(out, item)
	}
	response.Success(c, http.StatusOK, out)
}

// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param timezone query string false "IANA zone for dateTime"
// @Success 200 {object} map[string]interface{} "Class"
// @Failure 404 {object} map[string]interface{} "Class not found"
// @Router /classes/{id} [get]
func (h *Handler) GetClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := toClassResponse(class, c.Query("timezone"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fieldErr *validator.FieldError
	switch {
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, err.Error(), fieldErr.Fields)
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrInvalidTime):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidTime, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Class not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to process class request")
	}
}
