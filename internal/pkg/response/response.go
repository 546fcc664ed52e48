// Package response writes the JSON envelopes returned by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// Envelope is the common response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "bad_request", message, nil)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, "forbidden", message, nil)
}

// Error maps err onto an HTTP status using the domain error taxonomy.
// Unknown errors become a 500 without leaking their text.
func Error(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		invalid    *domain.InvalidStateError
		conflict   *domain.ConflictError
		forbidden  *domain.ForbiddenError
		slot       *domain.SlotUnavailableError
		external   *domain.ExternalServiceError
	)

	switch {
	case errors.As(err, &validation):
		abort(c, http.StatusBadRequest, "validation_error", validation.Message, validation.Fields)
	case errors.As(err, &notFound):
		abort(c, http.StatusNotFound, "not_found", notFound.Error(), nil)
	case errors.As(err, &invalid):
		abort(c, http.StatusConflict, "invalid_state", invalid.Error(), nil)
	case errors.As(err, &slot):
		abort(c, http.StatusConflict, "slot_unavailable", slot.Error(), nil)
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, "conflict", conflict.Error(), nil)
	case errors.As(err, &forbidden):
		abort(c, http.StatusForbidden, "forbidden", forbidden.Error(), nil)
	case errors.As(err, &external):
		abort(c, http.StatusBadGateway, "external_service_error", external.Error(), nil)
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func abort(c *gin.Context, status int, code, message string, fields []string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Fields: fields},
	})
}
