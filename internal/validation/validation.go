package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names in details
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// decimals validate as float64 so gte/lte tags work on prices
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &Validator{validate: v}
}

// Struct validates s and returns its violations as readable strings.
func (v *Validator) Struct(s any) []string {
	return Details(v.validate.Struct(s))
}

// Var validates one value under the given field name.
func (v *Validator) Var(field string, value any, tag string) []string {
	details := Details(v.validate.Var(value, tag))
	for i, d := range details {
		details[i] = field + d
	}
	return details
}

// Details flattens validator errors. A nil error yields nil.
func Details(err error) []string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s: %s", fe.Field(), describe(fe)))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this value should not be blank"
	case "email":
		return "this value is not a valid email address"
	case "gte":
		return "this value should be greater than or equal to " + fe.Param()
	case "lte":
		return "this value should be less than or equal to " + fe.Param()
	case "min":
		return "this value is too short, minimum is " + fe.Param()
	case "max":
		return "this value is too long, maximum is " + fe.Param()
	case "oneof":
		return "this value should be one of " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
