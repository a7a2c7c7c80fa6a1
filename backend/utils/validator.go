package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on the input and returns a
// field -> message map suitable for ValidationError, or nil when valid.
func ValidateStruct(input interface{}) map[string]string {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			errs[field] = "is required"
		case "min":
			errs[field] = "must be at least " + fieldErr.Param()
		case "max":
			errs[field] = "must be at most " + fieldErr.Param()
		case "oneof":
			errs[field] = "must be one of: " + fieldErr.Param()
		default:
			errs[field] = "is invalid"
		}
	}
	return errs
}
