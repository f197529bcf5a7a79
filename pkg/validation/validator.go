package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/apperror"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Register installs the custom rules on v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"phone": stringRule(phoneRegex.MatchString),
		"date": stringRule(func(s string) bool {
			_, err := time.Parse("2006-01-02", s)
			return err == nil
		}),
		"clock": stringRule(func(s string) bool {
			_, err := time.Parse("15:04", s)
			return err == nil
		}),
		"appointment_status": stringRule(func(s string) bool { return enum.AppointmentStatus(s).IsValid() }),
		"invoice_status":     stringRule(func(s string) bool { return enum.InvoiceStatus(s).IsValid() }),
		"payment_method":     stringRule(func(s string) bool { return enum.PaymentMethod(s).IsValid() }),
		"lab_order_type":     stringRule(func(s string) bool { return enum.LabOrderType(s).IsValid() }),
		"lab_priority":       stringRule(func(s string) bool { return enum.LabPriority(s).IsValid() }),
		"lab_order_status":   stringRule(func(s string) bool { return enum.LabOrderStatus(s).IsValid() }),
		"gender":             stringRule(func(s string) bool { return enum.Gender(s).IsValid() }),
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom rules on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

// stringRule adapts a string predicate. Empty values pass so that
// optional fields can be combined with omitempty or required.
func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		if value == "" {
			return true
		}
		return fn(value)
	}
}

// FieldErrors converts binding errors into per-field API errors.
// It returns nil when err is not a validation failure.
func FieldErrors(err error) []apperror.FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]apperror.FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, apperror.FieldError{
			Field:   toSnake(fe.Field()),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid UUID"
	case "phone":
		return "must be a valid phone number"
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "clock":
		return "must be a time in HH:MM format"
	case "dive":
		return "is invalid"
	default:
		return "is not a valid " + strings.ReplaceAll(fe.Tag(), "_", " ")
	}
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
