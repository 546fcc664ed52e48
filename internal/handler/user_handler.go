package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/middleware"
	"github.com/celebook/service-booking/internal/pkg/response"
)

// UserHandler handles the caller's own account.
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers account routes.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	users := r.Group("/api/v1/users/me")
	users.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireActiveAccount(h.service))
	{
		users.POST("", h.Register)
		users.GET("", h.GetMe)
		users.PUT("/payout", h.UpdatePayout)
	}
}

// Register handles POST /api/v1/users/me.
func (h *UserHandler) Register(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.Register(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePayout handles PUT /api/v1/users/me/payout.
func (h *UserHandler) UpdatePayout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdatePayoutRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdatePayoutDetails(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
