package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/api"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/gateway"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/payment"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/schedule"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Initiate godoc
// @Summary      Start a lesson booking
// @Description  Reserves the slot and returns gateway checkout details.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      InitiateRequest  true  "Booking details"
// @Success      201      {object}  CheckoutResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Initiate(c *gin.Context) {
	studentID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	checkout, err := h.service.InitiateBooking(c.Request.Context(), studentID, req)
	switch {
	case errors.Is(err, schedule.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "slot not found"})
		return
	case errors.Is(err, ErrSlotUnavailable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "slot is not available"})
		return
	case errors.Is(err, ErrInstructorNotVerified), errors.Is(err, ErrRateNotSet):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, payment.ErrSelfBooking):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "you cannot book your own slot"})
		return
	case errors.Is(err, gateway.ErrOrderCreation):
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "payment gateway is unavailable, please retry"})
		return
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "instructor not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to initiate booking"})
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

// Confirm godoc
// @Summary      Confirm a paid booking
// @Description  Verifies the gateway signature and finalizes the lesson.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ConfirmRequest  true  "Gateway callback fields"
// @Success      200      {object}  api.Result
// @Failure      400      {object}  api.ErrorResponse
// @Router       /bookings/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), req)
	switch {
	case errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "payment not found for this order"})
		return
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment signature"})
		return
	case errors.Is(err, payment.ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "payment already processed"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to confirm booking"})
		return
	}

	c.JSON(http.StatusOK, api.Result{
		Success: true,
		Message: "booking confirmed",
		Data:    result,
	})
}

// Cancel godoc
// @Summary      Cancel a booking
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        paymentID  path  int            true   "Payment ID"
// @Param        request    body  CancelRequest  false  "Cancellation reason"
// @Router       /bookings/{paymentID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	paymentID, err := strconv.Atoi(c.Param("paymentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment id"})
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.CancelBooking(c.Request.Context(), paymentID, userID, req.Reason)
	switch {
	case errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, ErrNotYourBooking):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "booking belongs to another user"})
		return
	case errors.Is(err, ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "booking already cancelled or refunded"})
		return
	case errors.Is(err, ErrCannotCancel):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to cancel booking"})
		return
	}

	c.JSON(http.StatusOK, api.Result{
		Success: result.Success,
		Message: result.Message,
		Data:    result,
	})
}

// Status godoc
// @Summary      Booking status
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Param        paymentID  path  int  true  "Payment ID"
// @Success      200  {object}  BookingStatus
// @Failure      404  {object}  api.ErrorResponse
// @Router       /bookings/{paymentID} [get]
func (h *Handler) Status(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("paymentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment id"})
		return
	}

	status, err := h.service.GetBookingStatus(c.Request.Context(), paymentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load booking status"})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "booking not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// List godoc
// @Summary      List my bookings
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "Filter by payment status"
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Offset"
// @Router       /bookings [get]
func (h *Handler) List(c *gin.Context) {
	studentID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *payment.Status
	if raw := c.Query("status"); raw != "" {
		s := payment.Status(raw)
		status = &s
	}

	bookings, hasMore, err := h.service.ListBookings(c.Request.Context(), studentID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"has_more": hasMore,
	})
}

// ListReceived godoc
// @Summary      List bookings received as instructor
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "Filter by payment status"
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Offset"
// @Router       /bookings/received [get]
func (h *Handler) ListReceived(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *payment.Status
	if raw := c.Query("status"); raw != "" {
		s := payment.Status(raw)
		status = &s
	}

	bookings, hasMore, err := h.service.ListReceivedBookings(c.Request.Context(), instructorID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"has_more": hasMore,
	})
}
