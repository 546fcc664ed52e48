package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/celebook/service-booking/internal/pkg/response"
	"github.com/celebook/service-booking/internal/pkg/validation"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Configure(v)
	}
}

// bindJSON decodes and validates the request body into req. On failure the
// response is written and false is returned.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		response.Error(c, validation.FromError(err))
		return false
	}
	response.BadRequest(c, err.Error())
	return false
}
