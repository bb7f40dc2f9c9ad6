package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sitewizard/internal/types"
	"sitewizard/internal/wizard"
)

// Validator wraps go-playground/validator with the wizard's custom tags:
//
//	subdomain       - a well-formed, non-reserved subdomain (case-insensitive)
//	hexcolor_or_rgb - #rgb, #rrggbb or rgb(r, g, b)
//
// Field names in errors are taken from the json tag so clients see the
// names they sent.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator with the custom tags registered.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return types.ValidateSubdomain(types.NormalizeSubdomain(fl.Field().String())) == ""
	})
	_ = v.RegisterValidation("hexcolor_or_rgb", func(fl validator.FieldLevel) bool {
		return wizard.IsColor(fl.Field().String())
	})

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct checks s against its validate tags. Failures become a
// validation_missing_required_field error when a required field is absent,
// and validation_invalid_json otherwise; Details["fields"] maps each failing
// field to the tag it broke.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a programming error, not client input.
		if v.logger != nil {
			v.logger.Error("struct validation misuse", "error", err)
		}
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	code := types.ErrCodeValidationInvalidJSON
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = fe.Tag()
		if fe.Tag() == "required" {
			code = types.ErrCodeValidationMissingField
		}
	}
	return types.NewAppErrorWithDetails(code, "request validation failed", err,
		map[string]any{"fields": fields})
}

// Var validates a single value against tag, e.g. Var(name, "subdomain").
func (v *Validator) Var(value any, tag string) bool {
	return v.validate.Var(value, tag) == nil
}

// fieldPath strips the top-level struct name from the namespace, so
// "createRequest.owner.email" becomes "owner.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
