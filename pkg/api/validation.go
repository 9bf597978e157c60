package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is built once and only read afterwards; validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateChatRequest checks a ChatRequest against its declared constraints.
// It returns an *APIError listing every violation, or nil if the request is
// valid.
func ValidateChatRequest(req *ChatRequest) *APIError {
	if req == nil {
		return NewInvalidRequestError("body", "request body is required")
	}
	return validateStruct(req)
}

// ValidateCompletionRequest checks a CompletionRequest against its declared
// constraints.
func ValidateCompletionRequest(req *CompletionRequest) *APIError {
	if req == nil {
		return NewInvalidRequestError("body", "request body is required")
	}
	return validateStruct(req)
}

func validateStruct(s any) *APIError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewInvalidRequestError("", err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		fields = append(fields, FieldError{
			Field:   path,
			Message: path + " " + describeViolation(fe),
		})
	}
	return NewValidationError(fields)
}

// fieldPath strips the leading struct name from a validator namespace,
// turning "ChatRequest.messages[0].content" into "messages[0].content".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
