package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/middleware"
	"github.com/celebook/service-booking/internal/pkg/response"
)

// CelebrityHandler handles HTTP requests for celebrity profiles and their
// service catalog.
type CelebrityHandler struct {
	catalog  *application.CatalogService
	bookings *application.BookingService
}

// NewCelebrityHandler creates a new CelebrityHandler.
func NewCelebrityHandler(catalog *application.CatalogService, bookings *application.BookingService) *CelebrityHandler {
	return &CelebrityHandler{catalog: catalog, bookings: bookings}
}

// RegisterRoutes registers public browse routes and the celebrity's own
// profile management routes.
func (h *CelebrityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, accounts middleware.AccountChecker) {
	public := r.Group("/api/v1/celebrities")
	{
		public.GET("", h.ListCelebrities)
		public.GET("/:id", h.GetCelebrity)
		public.GET("/:id/services", h.ListServices)
		public.GET("/:id/reviews", h.ListReviews)
	}

	me := r.Group("/api/v1/celebrities/me")
	me.Use(
		middleware.AuthMiddleware(jwtManager),
		middleware.RequireActiveAccount(accounts),
		middleware.RequireRole(auth.RoleCelebrity),
	)
	{
		me.PUT("", h.UpsertProfile)
		me.GET("/earnings", h.Earnings)
		me.POST("/services", h.CreateService)
		me.PUT("/services/:sid", h.UpdateService)
		me.DELETE("/services/:sid", h.DeleteService)
	}
}

// ListCelebrities handles GET /api/v1/celebrities?category=.
func (h *CelebrityHandler) ListCelebrities(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.catalog.ListCelebrities(c.Request.Context(), c.Query("category"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetCelebrity handles GET /api/v1/celebrities/:id.
func (h *CelebrityHandler) GetCelebrity(c *gin.Context) {
	celebrityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid celebrity ID")
		return
	}

	result, err := h.catalog.GetCelebrity(c.Request.Context(), celebrityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListServices handles GET /api/v1/celebrities/:id/services.
func (h *CelebrityHandler) ListServices(c *gin.Context) {
	celebrityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid celebrity ID")
		return
	}

	result, err := h.catalog.ListServices(c.Request.Context(), celebrityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListReviews handles GET /api/v1/celebrities/:id/reviews.
func (h *CelebrityHandler) ListReviews(c *gin.Context) {
	celebrityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid celebrity ID")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.catalog.ListReviews(c.Request.Context(), celebrityID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UpsertProfile handles PUT /api/v1/celebrities/me.
func (h *CelebrityHandler) UpsertProfile(c *gin.Context) {
	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpsertProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.catalog.UpsertProfile(c.Request.Context(), celebrityID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Earnings handles GET /api/v1/celebrities/me/earnings.
func (h *CelebrityHandler) Earnings(c *gin.Context) {
	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.bookings.GetCelebrityEarnings(c.Request.Context(), celebrityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateService handles POST /api/v1/celebrities/me/services.
func (h *CelebrityHandler) CreateService(c *gin.Context) {
	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.ServicePackageRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.catalog.CreateService(c.Request.Context(), celebrityID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateService handles PUT /api/v1/celebrities/me/services/:sid.
func (h *CelebrityHandler) UpdateService(c *gin.Context) {
	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	serviceID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req application.ServicePackageRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.catalog.UpdateService(c.Request.Context(), celebrityID, serviceID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteService handles DELETE /api/v1/celebrities/me/services/:sid. The
// package is archived; bookings already made keep their copy.
func (h *CelebrityHandler) DeleteService(c *gin.Context) {
	celebrityID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	serviceID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), celebrityID, serviceID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "service archived"})
}
