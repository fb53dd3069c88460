package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

var (
	bookingStatuses = []string{"pending", "accepted", "rejected", "confirmed", "in_progress", "completed", "cancelled", "no_show"}
	messageTypes    = []string{"text", "image", "price_offer", "booking_request", "system"}
	// service_category: closed set of salon categories
	serviceCategories = []string{"haircut", "coloring", "styling", "braiding", "treatment", "extensions", "custom"}
)

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("booking_status", oneOf(bookingStatuses))
	validate.RegisterValidation("message_type", oneOf(messageTypes))
	validate.RegisterValidation("service_category", oneOf(serviceCategories))

	// Currency validation: three upper-case letters
	validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		c := fl.Field().String()
		if len(c) != 3 {
			return false
		}
		for _, r := range c {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "uuid":
			errors[field] = "Invalid UUID"
		case "booking_status":
			errors[field] = "Invalid status. Must be one of: " + strings.Join(bookingStatuses, ", ")
		case "message_type":
			errors[field] = "Invalid message type. Must be one of: " + strings.Join(messageTypes, ", ")
		case "service_category":
			errors[field] = "Invalid category. Must be one of: " + strings.Join(serviceCategories, ", ")
		case "currency":
			errors[field] = "Invalid currency code"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
