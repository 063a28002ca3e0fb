package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxPriceScale = 2

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)
	validator.RegisterValidation("price", validatePrice)

	return validator
}

// jsonFieldName reports fields by the name clients send them under.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}

	return name
}

// validatePrice accepts non-negative amounts with at most two decimal places.
func validatePrice(fl validator.FieldLevel) bool {
	price, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}

	if price.IsNegative() {
		return false
	}

	return price.Equal(price.Truncate(maxPriceScale))
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s%s", err.Param(), unit(err.Kind()))
	case "max":
		return fmt.Sprintf("must be at most %s%s", err.Param(), unit(err.Kind()))
	case "price":
		return "must be a non-negative amount with at most two decimal places"
	default:
		return "is invalid"
	}
}

func unit(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters long"
	case reflect.Slice, reflect.Array:
		return " items"
	default:
		return ""
	}
}
