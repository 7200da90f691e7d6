package service

import (
	"reflect"
	"regexp"
	"strings"

	"catalog-api/internal/domain"

	"github.com/go-playground/validator/v10"
)

// skuRegex is the fixed SKU format: the letter A followed by four digits.
var skuRegex = regexp.MustCompile(`^A\d{4}$`)

// Validator instance shared by all entity validation
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report violations under json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("sku", validateSKU); err != nil {
		panic("failed to register sku validator: " + err.Error())
	}
}

func validateSKU(fl validator.FieldLevel) bool {
	return skuRegex.MatchString(fl.Field().String())
}

// validateProduct checks the product's field constraints and returns the
// violations, or nil if the product is valid.
func validateProduct(product *domain.Product) *ValidationError {
	return collectViolations(validate.Struct(product))
}

// validateCategory checks the category's field constraints and returns the
// violations, or nil if the category is valid.
func validateCategory(category *domain.Category) *ValidationError {
	return collectViolations(validate.Struct(category))
}

func collectViolations(err error) *ValidationError {
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-constraint failures (bad tags, unexported fields) are
		// programming errors, not user input problems.
		panic("entity validation failed: " + err.Error())
	}

	verr := &ValidationError{}
	for _, fe := range validationErrors {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return verr
}

// violationMessage maps a failed constraint to its user-facing message.
func violationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		switch fe.Tag() {
		case "required":
			if fe.StructNamespace() == "Product.Name" {
				return "Product must have a name"
			}
			return "Category must have a name"
		case "max":
			return "Product name is too long"
		}
	case "sku":
		return "SKU must be in the format A#### (A followed by 4 digits)"
	case "price":
		return "Price cannot be less than 0.00"
	case "quantity":
		return "Quantity cannot be less than 0"
	}
	return "Invalid value"
}
