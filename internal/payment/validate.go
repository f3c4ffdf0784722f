package payment

import (
	"errors"
	"reflect"
	"strings"

	"nextgen-storefront/internal/pricing"

	"github.com/go-playground/validator/v10"
)

const (
	msgCard       = "Please fill all card fields correctly"
	msgEFT        = "Please fill all EFT fields"
	msgInstalment = "Please fill all instalment fields including banking details"
	msgAddress    = "Please enter delivery address"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the section of form the payment type needs, then the
// delivery address when the order is delivered.
func Validate(form Form, paymentType pricing.PaymentType, delivery pricing.Delivery) error {
	form = form.normalized()

	var (
		section any
		prefix  string
		message string
	)
	switch paymentType {
	case pricing.Card:
		section, prefix, message = form.Card, "card", msgCard
	case pricing.EFT:
		section, prefix, message = form.EFT, "eft", msgEFT
	case pricing.Instalment:
		section, prefix, message = form.Instalment, "instalment", msgInstalment
	default:
		return pricing.ErrUnknownPaymentType
	}

	if err := validate.Struct(section); err != nil {
		return toValidationError(err, prefix, message)
	}

	if delivery == pricing.HomeDelivery {
		if err := validate.Struct(form.Delivery); err != nil {
			return toValidationError(err, "delivery", msgAddress)
		}
	}
	return nil
}

func toValidationError(err error, prefix, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Message: message}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: prefix + "." + fe.Field(),
			Rule:  fe.Tag(),
		})
	}
	return out
}
