package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// argValidator wraps go-playground/validator for command argument structs.
// One instance is shared by every session.
type argValidator struct {
	v *validator.Validate
}

var argCheck = newArgValidator()

func newArgValidator() *argValidator {
	v := validator.New()
	// bcrypt only looks at the first 72 bytes, rune counts are not enough.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	// A stored CR or LF could never be echoed back in a LOGIN reply.
	_ = v.RegisterValidation("nolinebreak", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return &argValidator{v: v}
}

// Validate returns a single human-readable error joining every failed field.
func (av *argValidator) Validate(i any) error {
	if err := av.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "nolinebreak":
		return field + " must not contain line breaks"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

type registerArgs struct {
	Name     string `validate:"required,max=100,nolinebreak"`
	Email    string `validate:"required,max=254,nolinebreak"`
	Password string `validate:"required,maxbytes=72,nolinebreak"`
}
