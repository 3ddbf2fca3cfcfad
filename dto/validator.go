package dto

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "email":
				message = "Invalid email format"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "strong_password":
				message = "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
