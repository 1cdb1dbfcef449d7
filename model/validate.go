// Package model provides the typed documents stored by the traincamp API.
package model

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct validation tags on a document and returns a single
// readable error listing every field that failed.
func Validate(doc interface{}) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("please add a %s", strings.ToLower(fe.Field())))
		case "email":
			msgs = append(msgs, "please add a valid email")
		case "url":
			msgs = append(msgs, fmt.Sprintf("please add a valid URL for %s", strings.ToLower(fe.Field())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param()))
		case "min", "max", "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s failed the %s=%s constraint", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}

	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
