package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validationError converts validator output into a ValidationError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Pflichtfeld"
	case "email":
		return "Ungültige E-Mail-Adresse"
	case "max":
		return "Höchstens " + fe.Param() + " Zeichen"
	case "min":
		return "Mindestens " + fe.Param()
	case "oneof":
		return "Erlaubt: " + fe.Param()
	case "datetime":
		return "Datum im Format JJJJ-MM-TT erwartet"
	case "gte":
		return "Muss mindestens " + fe.Param() + " sein"
	default:
		return "Ungültiger Wert"
	}
}
