package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/middleware"
	"github.com/celebook/service-booking/internal/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service  *application.BookingService
	receipts *application.ReceiptService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, receipts *application.ReceiptService) *BookingHandler {
	return &BookingHandler{service: service, receipts: receipts}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, accounts middleware.AccountChecker) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireActiveAccount(accounts))
	{
		bookings.POST("", middleware.RequireRole(auth.RoleClient), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/receipt", h.DownloadReceipt)
		bookings.POST("/:id/accept", middleware.RequireRole(auth.RoleCelebrity), h.AcceptBooking)
		bookings.POST("/:id/decline", middleware.RequireRole(auth.RoleCelebrity), h.DeclineBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/review", middleware.RequireRole(auth.RoleClient), h.SubmitReview)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Clients see their own bookings,
// celebrities the bookings made with them, admins everything.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListForActor(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DownloadReceipt handles GET /api/v1/bookings/:id/receipt.
func (h *BookingHandler) DownloadReceipt(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	receipt, err := h.receipts.Render(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", receipt.Filename))
	c.Data(http.StatusOK, "application/pdf", receipt.Content)
}

// AcceptBooking handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.AcceptBooking(c.Request.Context(), bookingID, celebrityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeclineBooking handles POST /api/v1/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.DeclineBooking(c.Request.Context(), bookingID, celebrityID, body.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel. The body must carry
// "confirm": true.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CancelRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SubmitReview handles POST /api/v1/bookings/:id/review.
func (h *BookingHandler) SubmitReview(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	clientID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.SubmitReview(c.Request.Context(), bookingID, clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// currentActor builds the use-case actor from the verified token claims.
func currentActor(c *gin.Context) (application.Actor, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return application.Actor{}, false
	}
	return application.Actor{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
