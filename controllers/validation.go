package controllers

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrors flattens a gin binding failure into short per-field messages
// for the {message, errors:[...]} envelope.
func bindingErrors(err error) []string {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				out = append(out, field+" is required")
			case "email":
				out = append(out, field+" must be a valid email address")
			case "min":
				out = append(out, field+" must be at least "+fe.Param()+" characters")
			case "max":
				out = append(out, field+" must be at most "+fe.Param()+" characters")
			default:
				out = append(out, field+" is invalid")
			}
		}
		return out
	}
	return []string{err.Error()}
}
