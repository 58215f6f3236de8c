package handlers

import (
	"net/http"

	"slotbook/middleware"
	"slotbook/models"
	"slotbook/services/booking"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
	}
	return actor, ok
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking request", err.Error())
		return
	}
	day, err := utils.ParseBookingDate(req.BookingDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking date", err.Error())
		return
	}

	resp, err := h.Service.Allocate(c.Request.Context(), actor, models.AllocationRequest{
		ProviderID:    req.ServiceProviderID,
		ServiceID:     req.ServiceID,
		Date:          day,
		SlotLabels:    req.TimeSlot,
		Location:      req.Location,
		ContactNumber: req.ContactNumber,
		Images:        req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	resp, err := h.Service.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status update", err.Error())
		return
	}
	updated, err := h.Service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	cancelled, err := h.Service.Release(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": cancelled})
}

// GetProviderAvailability handles GET /api/providers/:id/availability?date=YYYY-MM-DD.
func (h *BookingHandler) GetProviderAvailability(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required query parameter: date", "")
		return
	}
	day, err := utils.ParseBookingDate(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	slots, err := h.Service.GetAvailableSlots(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId": c.Param("id"),
		"date":       day.Format(utils.DateLayout),
		"slots":      slots,
	})
}

type reconcileRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// ReconcileAvailability handles POST /api/admin/availability/reconcile.
func (h *BookingHandler) ReconcileAvailability(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid reconcile request", err.Error())
		return
	}
	day, err := utils.ParseBookingDate(req.Date)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	report, err := h.Service.Reconcile(c.Request.Context(), req.ProviderID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
