// Package validation checks request DTOs against their `binding` tags, the
// same tags gin evaluates in ShouldBindJSON, and reports failures as a
// domain.ValidationError naming fields by their JSON names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// TagName is the struct tag holding validation rules.
const TagName = "binding"

var (
	once sync.Once
	std  *validator.Validate
)

// Default returns the shared validator used outside of gin.
func Default() *validator.Validate {
	once.Do(func() {
		std = validator.New()
		std.SetTagName(TagName)
		Configure(std)
	})
	return std
}

// Configure registers JSON field naming and the notblank rule on v. It is
// applied to gin's binding engine as well as to Default.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// Struct validates req and returns nil or a *domain.ValidationError.
func Struct(req interface{}) error {
	return FromError(Default().Struct(req))
}

// FromError converts validator failures into one *domain.ValidationError that
// lists every failing field. Missing fields come first, in declaration order.
// Errors that are not validation failures are returned unchanged.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	var missing, invalid []string
	for _, fe := range failures {
		switch fe.Tag() {
		case "required", "notblank":
			missing = append(missing, fe.Field())
		default:
			invalid = append(invalid, fe.Field())
		}
	}
	if len(invalid) == 0 {
		return domain.NewMissingFieldsError(missing...)
	}
	return &domain.ValidationError{
		Message: "invalid fields",
		Fields:  append(missing, invalid...),
	}
}
