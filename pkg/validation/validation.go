// Package validation holds the request validator shared by the HTTP decoders
// and the domain services.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

// TagMobile is the struct tag for Indian mobile numbers.
const TagMobile = "in_mobile"

// Ten digits starting 6-9, optionally led by the 91 or 910 country prefix.
var mobilePattern = regexp.MustCompile(`^(?:910|91)?[6-9][0-9]{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "-" {
			return ""
		}
		if tag == "" {
			return f.Name
		}
		return tag
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})
	if err := v.RegisterValidation(TagMobile, func(fl validator.FieldLevel) bool {
		return ValidMobile(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// NormalizeMobile strips spaces, '+' and '-' separators.
func NormalizeMobile(raw string) string {
	return strings.NewReplacer(" ", "", "+", "", "-", "").Replace(strings.TrimSpace(raw))
}

// ValidMobile reports whether raw is an acceptable Indian mobile number.
func ValidMobile(raw string) bool {
	return mobilePattern.MatchString(NormalizeMobile(raw))
}

// Struct validates v and reports the most significant failure: missing fields
// first, then malformed mobiles, then everything else.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	first := errs[0]
	for _, fe := range errs[1:] {
		if rank(fe) < rank(first) {
			first = fe
		}
	}
	return FieldError(reasonFor(first), fieldPath(first), message(first))
}

// FieldError builds the validation error shape clients match on.
func FieldError(reason, field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{
		"reason": reason,
		"field":  field,
	})
}

func rank(fe validator.FieldError) int {
	switch reasonFor(fe) {
	case pkgerrors.ReasonMissingField:
		return 0
	case pkgerrors.ReasonInvalidMobile:
		return 1
	}
	return 2
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return pkgerrors.ReasonMissingField
	case TagMobile:
		return pkgerrors.ReasonInvalidMobile
	}
	return pkgerrors.ReasonInvalidField
}

// fieldPath drops the root struct name from the namespace: products[0].sku.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case TagMobile:
		return field + " is not a valid mobile number"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
	}
	return field + " is invalid"
}
