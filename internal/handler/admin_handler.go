package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/middleware"
	"github.com/celebook/service-booking/internal/pkg/response"
)

// AdminHandler handles admin HTTP requests for bookings and accounts.
type AdminHandler struct {
	bookings *application.BookingService
	sweep    *application.SweepService
	users    *application.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, sweep *application.SweepService, users *application.UserService) *AdminHandler {
	return &AdminHandler{bookings: bookings, sweep: sweep, users: users}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, accounts middleware.AccountChecker) {
	admin := r.Group("/api/v1/admin")
	admin.Use(
		middleware.AuthMiddleware(jwtManager),
		middleware.RequireActiveAccount(accounts),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/bookings/:id/refund", h.RefundBooking)
		admin.POST("/bookings/:id/payout", h.ConfirmPayout)
		admin.POST("/sweep", h.RunSweep)
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// RefundBooking handles POST /api/v1/admin/bookings/:id/refund.
func (h *AdminHandler) RefundBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.RefundRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bookings.ProcessRefund(c.Request.Context(), bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmPayout handles POST /api/v1/admin/bookings/:id/payout.
func (h *AdminHandler) ConfirmPayout(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.ConfirmCelebrityPayout(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RunSweep handles POST /api/v1/admin/sweep.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	report, err := h.sweep.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, report)
}

// ListUsers handles GET /api/v1/admin/users?role=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), c.Query("role"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, users, total, page, limit)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
