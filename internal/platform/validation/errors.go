package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorBody is the validation error payload every endpoint returns on 400.
type ErrorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

// ErrorResponse converts a validator error into a structured response, one
// readable message per failed rule keyed by the lowercased field name.
func ErrorResponse(err error) ErrorBody {
	fields := map[string][]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			fields[field] = append(fields[field], ruleMessage(fe))
		}
	}
	if len(fields) == 0 {
		return ErrorBody{Error: err.Error(), Fields: fields}
	}
	return ErrorBody{Error: "validation_failed", Fields: fields}
}

// ruleMessage spells out the rules this API actually uses; anything else
// falls back to the raw tag.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a UUID"
	case "slug":
		return `must be a lowercase identifier like "product-page-1"`
	default:
		return fe.Tag()
	}
}
