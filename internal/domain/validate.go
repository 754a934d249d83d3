package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// A single instance caches struct information across calls.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("sendertype", func(fl validator.FieldLevel) bool {
		return SenderType(fl.Field().String()).Valid()
	})
	_ = validatorInstance.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validator returns the shared validator so other layers (event decoding,
// echo request binding) apply the same custom rules.
func Validator() *validator.Validate {
	return validatorInstance
}

// ValidateStruct validates v and converts the first failing field into a
// *ValidationError.
func ValidateStruct(v any) error {
	err := validatorInstance.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: jsonFieldName(fe.Field()), Reason: reasonFor(fe)}
	}
	return &ValidationError{Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "sendertype":
		return "must be one of user, character, system"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte", "lte":
		return "is out of range"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// jsonFieldName lower-cases the first letter of a Go field name.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
