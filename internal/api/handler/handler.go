package handler

import (
	"context"
	"log/slog"

	"github.com/interpretly/booking-be/internal/booking/service"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Service *service.BookingService

	// Optional health probes. When set, the health endpoint reports
	// unhealthy if either fails.
	DBPing     func(ctx context.Context) error
	QueueReady func() bool
}

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	logger  *slog.Logger
	service *service.BookingService
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(deps *Dependencies) *BookingHandler {
	return &BookingHandler{
		logger:  deps.Logger,
		service: deps.Service,
	}
}
