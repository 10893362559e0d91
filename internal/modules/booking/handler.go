package booking

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
	// zone used for class start times unless the caller asks for another
	displayZone string
}

func NewHandler(service *Service, displayZone string) *Handler {
	return &Handler{service: service, displayZone: displayZone}
}

// RegisterRoutes mounts the booking endpoints. bookGuards run before the
// booking handler only (rate limiting).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, bookGuards ...gin.HandlerFunc) {
	book := append(append([]gin.HandlerFunc{}, bookGuards...), h.CreateBooking)
	rg.POST("/book", book...)
	rg.GET("/bookings", h.ListBookings)
}

// CreateBooking reserves one slot in a class for the client.
//
// @Summary Book a class
// @Description Reserve a slot; a client may hold at most one booking per class
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "Booking details"
// @Success 201 {object} map[string]interface{} "Created booking"
// @Failure 400 {object} map[string]interface{} "Validation error or class already started"
// @Failure 404 {object} map[string]interface{} "Class not found"
// @Failure 409 {object} map[string]interface{} "Duplicate booking or no slots left"
// @Failure 429 {object} map[string]interface{} "Rate limited"
// @Router /book [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out, err := toBookingResponse(b, h.displayZone)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// ListBookings returns every booking made with an email address.
//
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param email query string true "Client email"
// @Param timezone query string false "IANA zone for classDateTime"
// @Success 200 {object} map[string]interface{} "Bookings"
// @Failure 400 {object} map[string]interface{} "Missing email or unknown timezone"
// @Router /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters")
		return
	}

	zone := h.displayZone
	if q.Timezone != "" {
		if _, err := tz.LoadZone(q.Timezone); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
			return
		}
		zone = q.Timezone
	}

	rows, err := h.service.ListUserBookings(c.Request.Context(), q.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]BookingResponse, 0, len(rows))
	for i := range rows {
		item, err := toBookingResponse(&rows[i], zone)
		if err != nil {
			h.writeError(c, err)
			return
		}
		out = append(out, item)
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
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Class not found")
	case errors.Is(err, ErrClassStarted):
		response.Error(c, http.StatusBadRequest, response.CodeClassStarted, "Cannot book past classes")
	case errors.Is(err, ErrDuplicateBooking):
		response.Error(c, http.StatusConflict, response.CodeDuplicate, "You have already booked this class")
	case errors.Is(err, ErrNoCapacity):
		response.Error(c, http.StatusConflict, response.CodeNoCapacity, "No available slots")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to process booking")
	}
}
