package forms

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the Errors key for errors that belong to the whole form.
const NonFieldErrors = "__all__"

const (
	msgRequired      = "This field is required."
	msgMaxLength     = "Ensure this value has at most %s characters (it has %d)."
	msgInvalidChoice = "Select a valid choice. %s is not one of the available choices."
	msgInvalid       = "Enter a valid value."
)

// Errors maps a form field name to its error messages.
type Errors map[string][]string

// Add appends msg to field. An empty field means a non-field error.
func (e Errors) Add(field, msg string) {
	if field == "" {
		field = NonFieldErrors
	}
	e[field] = append(e[field], msg)
}

func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) NonField() []string {
	return e[NonFieldErrors]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the posted field name rather than the Go one.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Billing countries validate against the same list the select renders.
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return IsCountry(fl.Field().String())
	})
	return v
}

// validateStruct runs the validator over s and records one message per
// failing field.
func validateStruct(s interface{}, errs Errors) {
	err := validate.Struct(s)
	if err == nil {
		return
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("", err.Error())
		return
	}

	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		value, _ := fe.Value().(string)
		return fmt.Sprintf(msgMaxLength, fe.Param(), utf8.RuneCountInString(value))
	case "country", "oneof":
		return fmt.Sprintf(msgInvalidChoice, fe.Value())
	default:
		return msgInvalid
	}
}
