package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries one message per failed field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out.Fields = append(out.Fields, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			out.Fields = append(out.Fields, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			out.Fields = append(out.Fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return out
}
