package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/interpretly/booking-be/internal/api/dto"
	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/lifecycle"
	"github.com/interpretly/booking-be/internal/booking/service"
)

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := h.service.Create(c.Request.Context(), req.UserID, service.CreateBooking{
		CustomerID:           req.UserID,
		Immediate:            req.Immediate,
		DueDate:              req.DueDate,
		DueTime:              req.DueTime,
		Duration:             req.Duration,
		FromLanguageID:       req.FromLanguageID,
		JobFor:               req.JobFor,
		CustomerPhoneType:    req.CustomerPhoneType,
		CustomerPhysicalType: req.CustomerPhysicalType,
		UserEmail:            req.UserEmail,
		Reference:            req.Reference,
		Address:              req.Address,
		Instructions:         req.Instructions,
		Town:                 req.Town,
		ByAdmin:              req.ByAdmin,
	})
	if err != nil {
		h.respondError(c, "Failed to create booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBooking handles GET /api/v1/bookings/:booking_id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	job, active, err := h.service.Get(c.Request.Context(), bookingID)
	if err != nil {
		h.respondError(c, "Failed to get booking", err)
		return
	}

	c.JSON(http.StatusOK, toBookingDTO(job, active))
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var req dto.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeBookingCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	jobs, err := h.service.List(c.Request.Context(), service.JobFilter{
		CustomerID: req.CustomerID,
		Status:     req.Status,
		PageSize:   req.PageSize,
		Cursor:     cursor,
	})
	if err != nil {
		h.respondError(c, "Failed to list bookings", err)
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	bookings := make([]dto.BookingDTO, len(jobs))
	for i := range jobs {
		bookings[i] = toBookingDTO(&jobs[i], nil)
	}

	var nextCursor string
	if hasMore {
		last := jobs[len(jobs)-1]
		nextCursor = EncodeBookingCursor(&service.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListBookingsResponse{
		Bookings:   bookings,
		NextCursor: nextCursor,
	})
}

// AcceptBooking handles POST /api/v1/bookings/:booking_id/accept
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.lifecycleAction(c, "accept", h.service.Accept)
}

// CancelBooking handles POST /api/v1/bookings/:booking_id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.lifecycleAction(c, "cancel", h.service.Cancel)
}

// EndBooking handles POST /api/v1/bookings/:booking_id/end
func (h *BookingHandler) EndBooking(c *gin.Context) {
	h.lifecycleAction(c, "end", h.service.End)
}

// ReopenBooking handles POST /api/v1/bookings/:booking_id/reopen
func (h *BookingHandler) ReopenBooking(c *gin.Context) {
	h.lifecycleAction(c, "reopen", h.service.Reopen)
}

// ReassignBooking handles POST /api/v1/bookings/:booking_id/reassign
func (h *BookingHandler) ReassignBooking(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := h.service.Reassign(c.Request.Context(), bookingID, req.TranslatorID, req.UserID)
	if err != nil {
		h.respondError(c, "Failed to reassign booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateBooking handles PATCH /api/v1/bookings/:booking_id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	upd := lifecycle.Update{
		FromLanguageID: req.FromLanguageID,
		AdminComments:  req.AdminComments,
		Reference:      req.Reference,
		SessionTime:    req.SessionTime,
	}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		upd.Status = &status
	}

	if req.DueDate != nil || req.DueTime != nil {
		if req.DueDate == nil || req.DueTime == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "due_date and due_time must be provided together",
			})
			return
		}
		due, err := domain.JoinDue(*req.DueDate, *req.DueTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid due_date or due_time",
			})
			return
		}
		upd.Due = &due
	}

	result, err := h.service.Update(c.Request.Context(), bookingID, upd, req.UserID)
	if err != nil {
		h.respondError(c, "Failed to update booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExpireBooking handles POST /api/v1/bookings/:booking_id/expire. The
// scheduler calls this for bookings past their match window.
func (h *BookingHandler) ExpireBooking(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	result, err := h.service.Expire(c.Request.Context(), bookingID)
	if err != nil {
		h.respondError(c, "Failed to expire booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// NotifyExpired handles POST /api/v1/bookings/:booking_id/notify-expired
func (h *BookingHandler) NotifyExpired(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	result, err := h.service.NotifyExpired(c.Request.Context(), bookingID)
	if err != nil {
		h.respondError(c, "Failed to notify expired booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// NotifyCandidates handles POST /api/v1/bookings/:booking_id/notify-candidates
func (h *BookingHandler) NotifyCandidates(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req dto.NotifyCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := h.service.NotifyCandidates(c.Request.Context(), bookingID, req.ExcludeTranslatorID)
	if err != nil {
		h.respondError(c, "Failed to notify candidates", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// lifecycleAction is the shared shape of the single-actor transitions: parse
// the booking id and acting user, run the use case, return its result.
func (h *BookingHandler) lifecycleAction(c *gin.Context, name string, action func(ctx context.Context, jobID, actorID string) (*service.Result, error)) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req dto.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := action(c.Request.Context(), bookingID, req.UserID)
	if err != nil {
		h.respondError(c, "Failed to "+name+" booking", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) bookingID(c *gin.Context) (string, bool) {
	bookingID := c.Param("booking_id")
	if _, err := uuid.Parse(bookingID); err != nil {
		h.logger.Error("Invalid booking_id format",
			slog.String("booking_id", bookingID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "booking_id must be a valid UUID",
		})
		return "", false
	}
	return bookingID, true
}

// respondError maps domain errors to HTTP statuses.
func (h *BookingHandler) respondError(c *gin.Context, message string, err error) {
	if errors.Is(err, domain.ErrJobNotFound) || errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.logger.Error(message, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message,
	})
}

func toBookingDTO(job *domain.Job, active *domain.Assignment) dto.BookingDTO {
	d := dto.BookingDTO{
		ID:                   job.ID,
		Status:               string(job.Status),
		Immediate:            job.Immediate,
		Due:                  job.DueString(),
		Duration:             job.Duration,
		FromLanguageID:       job.FromLanguageID,
		JobFor:               job.JobFor(),
		JobType:              string(job.JobType),
		CustomerPhoneType:    job.CustomerPhoneType,
		CustomerPhysicalType: job.CustomerPhysicalType,
		CustomerID:           job.CustomerID,
		UserEmail:            job.UserEmail,
		Reference:            job.Reference,
		Address:              job.Address,
		Instructions:         job.Instructions,
		Town:                 job.Town,
		SessionTime:          job.SessionTime,
		CreatedAt:            job.CreatedAt.Format(time.RFC3339),
		WillExpireAt:         job.WillExpireAt.Format(time.RFC3339),
	}
	if active != nil {
		d.TranslatorID = active.TranslatorID
	}
	return d
}
