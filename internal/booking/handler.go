package booking

import (
	"errors"
	"net/http"
	"strconv"

	"classflow/internal/api"
	"classflow/internal/auth"
	"classflow/internal/classes"
	"classflow/internal/entitlement"
	"classflow/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Book a class
// @Description  Reserves a seat in the class, or joins the waitlist when the class is full. Denied when the member's subscription does not cover the class or the booking window has closed.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      201 {object} booking.BookResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/book [post]
func (h *Handler) Book(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	result, err := h.service.Book(c.Request.Context(), classID, memberID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary      Cancel a booking
// @Description  Cancels the member's confirmed booking. The credit is refunded and, if a seat frees up, the first eligible waitlisted member is promoted.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.CancelResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), bookingID, memberID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        upcoming query bool false "Only upcoming confirmed bookings"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	onlyUpcoming := c.Query("upcoming") == "true"
	bookings, err := h.service.GetMemberBookings(c.Request.Context(), memberID, onlyUpcoming)
	if err != nil {
		logger.Error("failed to fetch member bookings", "member_id", memberID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Leave the waitlist
// @Description  Removes the member's waiting entry. Positions of members behind them do not change.
// @Tags         waitlist
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} booking.WaitlistEntry
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID}/waitlist [delete]
func (h *Handler) LeaveWaitlist(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	entry, err := h.service.LeaveWaitlist(c.Request.Context(), classID, memberID)
	if err != nil {
		if errors.Is(err, ErrNotOnWaitlist) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not on the waitlist", Code: "not_on_waitlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to leave waitlist"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary      My waitlist position
// @Tags         waitlist
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} booking.WaitlistEntry
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID}/waitlist/position [get]
func (h *Handler) WaitlistPosition(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	entry, err := h.service.Position(c.Request.Context(), classID, memberID)
	if err != nil {
		if errors.Is(err, ErrNotOnWaitlist) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not on the waitlist", Code: "not_on_waitlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch waitlist position"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary      Class roster
// @Description  Admin-only: confirmed bookings for a class.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/roster [get]
func (h *Handler) ClassRoster(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	roster, err := h.service.GetClassRoster(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch roster"})
		return
	}

	c.JSON(http.StatusOK, roster)
}

// @Summary      Class waitlist
// @Description  Admin-only: waiting entries for a class in promotion order.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {array} booking.WaitlistEntry
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/waitlist [get]
func (h *Handler) ClassWaitlist(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	entries, err := h.service.GetClassWaitlist(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch waitlist"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// writeBookingError maps lifecycle errors onto HTTP statuses: entitlement
// denials are 403, temporal and state conflicts are 409, missing resources
// are 404.
func (h *Handler) writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, classes.ErrClassNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found", Code: "class_not_found"})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found", Code: "booking_not_found"})
	case errors.Is(err, ErrNotYourBooking):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Booking belongs to another member", Code: "not_your_booking"})
	case errors.Is(err, ErrNoActiveSubscription):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "No active subscription", Code: "no_active_subscription"})
	case errors.Is(err, entitlement.ErrInactiveSubscription):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Subscription is not active", Code: "subscription_inactive"})
	case errors.Is(err, entitlement.ErrNoRemainingCredits):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "No remaining class credits", Code: "no_remaining_credits"})
	case errors.Is(err, entitlement.ErrCategoryMismatch):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Subscription does not cover this class category", Code: "category_mismatch"})
	case errors.Is(err, entitlement.ErrEquipmentMismatch):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Subscription does not cover this equipment", Code: "equipment_mismatch"})
	case errors.Is(err, classes.ErrClassAlreadyStarted):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Class has already started", Code: "class_started"})
	case errors.Is(err, classes.ErrTooCloseToStart):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Too close to class start", Code: "booking_window_closed"})
	case errors.Is(err, classes.ErrTooLateToCancel):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Too late to cancel this booking", Code: "cancel_window_closed"})
	case errors.Is(err, ErrClassNotActive):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Class is cancelled", Code: "class_cancelled"})
	case errors.Is(err, ErrAlreadyBooked):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Already booked for this class", Code: "already_booked"})
	case errors.Is(err, ErrAlreadyWaitlisted):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Already on the waitlist for this class", Code: "already_waitlisted"})
	case errors.Is(err, ErrBookingAlreadyCancelled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is already cancelled", Code: "already_cancelled"})
	default:
		logger.Error("booking operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
