package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interpretly/booking-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		resp := gin.H{
			"status":  "healthy",
			"service": "booking-api-service",
		}

		if deps.DBPing != nil {
			if err := deps.DBPing(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				resp["status"] = "unhealthy"
				resp["database"] = err.Error()
			}
		}
		if deps.QueueReady != nil && !deps.QueueReady() {
			status = http.StatusServiceUnavailable
			resp["status"] = "unhealthy"
			resp["queue"] = "disconnected"
		}

		c.JSON(status, resp)
	})

	bookingHandler := handler.NewBookingHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		{
			// POST /api/v1/bookings - Create a new booking
			bookings.POST("", bookingHandler.CreateBooking)

			// GET /api/v1/bookings - List bookings with filtering and pagination
			bookings.GET("", bookingHandler.ListBookings)

			// GET /api/v1/bookings/:booking_id - Get booking details
			bookings.GET("/:booking_id", bookingHandler.GetBooking)

			// PATCH /api/v1/bookings/:booking_id - Admin edit
			bookings.PATCH("/:booking_id", bookingHandler.UpdateBooking)

			// Lifecycle transitions
			bookings.POST("/:booking_id/accept", bookingHandler.AcceptBooking)
			bookings.POST("/:booking_id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:booking_id/end", bookingHandler.EndBooking)
			bookings.POST("/:booking_id/reopen", bookingHandler.ReopenBooking)
			bookings.POST("/:booking_id/reassign", bookingHandler.ReassignBooking)

			// Scheduler hooks for the match window
			bookings.POST("/:booking_id/expire", bookingHandler.ExpireBooking)
			bookings.POST("/:booking_id/notify-expired", bookingHandler.NotifyExpired)
			bookings.POST("/:booking_id/notify-candidates", bookingHandler.NotifyCandidates)
		}
	}

	return r
}
