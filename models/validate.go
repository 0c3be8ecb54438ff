package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their form name so errors line up with inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		return !isNumeric(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateForm checks a struct carrying validate tags and returns one message
// per failing field, keyed by the field's form name
func ValidateForm(form any) map[string]string {
	messages := map[string]string{}
	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			messages[fe.Field()] = fieldMessage(fe).Error()
		}
	} else if err != nil {
		panic(err)
	}
	return messages
}

// validateVar checks a single value against tag and returns the first failure
func validateVar(value string, tag string) error {
	err := validate.Var(value, tag)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldMessage(fieldErrs[0])
	}
	return err
}

func fieldMessage(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return ErrRequired
	case "max":
		return fmt.Errorf("Ensure this value has at most %s characters (it has %d).", fe.Param(), valueLength(fe))
	case "min":
		return fmt.Errorf("This password is too short. It must contain at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Errorf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "eqfield":
		return ErrPasswordMismatch
	case "username":
		return ErrUsernameInvalid
	case "notnumeric":
		return ErrPasswordNumeric
	}
	return fmt.Errorf("Enter a valid value (%s).", fe.Tag())
}

func valueLength(fe validator.FieldError) int {
	if s, ok := fe.Value().(string); ok {
		return utf8.RuneCountInString(s)
	}
	return 0
}
