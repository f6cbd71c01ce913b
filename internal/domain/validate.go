package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			return tickerPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// IsTicker reports whether s is a well-formed ticker symbol.
func IsTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// checkStruct runs the struct tags and folds field failures into a single
// message under the given code.
func checkStruct(code ErrorCode, v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Code: code, Message: "invalid value", Err: err}
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return &Error{Code: code, Message: strings.Join(parts, "; ")}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "ticker":
		return fmt.Sprintf("%s %q must be 1-5 uppercase letters", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be within range (got %v)", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}
