package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"applytrack/pkg/models"
)

// ValidateApplicationStatus accepts any known application status
func ValidateApplicationStatus(fl validator.FieldLevel) bool {
	return models.ApplicationStatus(fl.Field().String()).IsValid()
}

// ValidateEntryStatus accepts the statuses an application may be created with
func ValidateEntryStatus(fl validator.FieldLevel) bool {
	switch models.ApplicationStatus(fl.Field().String()) {
	case models.StatusDraft, models.StatusApplied:
		return true
	}
	return false
}

// RegisterApplicationValidators registers all application-related custom validators
func RegisterApplicationValidators(v *validator.Validate) {
	v.RegisterValidation("app_status", ValidateApplicationStatus)
	v.RegisterValidation("entry_status", ValidateEntryStatus)
}

// New returns a validator that reports fields by their JSON names
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterApplicationValidators(v)
	return v
}

// Describe flattens validator errors into one readable line
func Describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "min", "max":
			parts = append(parts, fe.Field()+" must be "+fe.Tag()+" "+fe.Param())
		case "app_status", "entry_status":
			parts = append(parts, fe.Field()+" has an invalid status")
		default:
			parts = append(parts, fe.Field()+" failed "+fe.Tag()+" validation")
		}
	}
	return strings.Join(parts, "; ")
}
