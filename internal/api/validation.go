package api

import (
	"errors"  // Error inspection
	"fmt"     // Message formatting
	"reflect" // Custom type registration
	"sync"    // One-time registration

	"github.com/gin-gonic/gin/binding"       // Gin binding engine
	"github.com/go-playground/validator/v10" // Request validation
	"github.com/shopspring/decimal"          // Exact decimal arithmetic
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator to compare decimal.Decimal fields
// numerically, so tags like gt=0 work on amounts, and adds notblank for
// fields that must not be whitespace only.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
	})
}

// FieldError is one entry of a 400 response body
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// validationErrors turns a binding error into client-facing field errors
func validationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return "Valid email is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s must be a positive number", e.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
