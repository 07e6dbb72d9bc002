package middleware

import (
	stderrors "errors"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"captionflow/internal/api/errors"
)

// Validator is implemented by requests with rules struct tags cannot express.
type Validator interface {
	Validate() error
}

// ValidateRequest binds a JSON body and applies tag and domain validation.
func ValidateRequest(c *gin.Context, req interface{}) error {
	return bindAndValidate(c.ShouldBindWith(req, binding.JSON), req, "request", "invalid JSON format")
}

// ValidateForm binds multipart or urlencoded form fields.
func ValidateForm(c *gin.Context, req interface{}) error {
	return bindAndValidate(c.ShouldBind(req), req, "form", "invalid form data")
}

// ValidateQuery validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	return bindAndValidate(c.ShouldBindQuery(req), req, "query", "invalid query parameters")
}

func bindAndValidate(bindErr error, req interface{}, scope, fallback string) error {
	if bindErr != nil {
		fields := make(map[string]string)

		var validationErrs validator.ValidationErrors
		if stderrors.As(bindErr, &validationErrs) {
			for _, fieldError := range validationErrs {
				fields[lowerFirst(fieldError.Field())] = tagMessage(fieldError.Tag())
			}
		} else {
			fields[scope] = fallback
		}

		return errors.NewValidationError("Validation failed", fields)
	}

	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func tagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "is required"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "oneof":
		return "must be one of the allowed values"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
