package validation

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator that understands decimal.Decimal fields, so tags such as
// `gt=0` and `gte=0` can be used on amounts and quantities.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterDecimal(v)
	return v
}

// RegisterDecimal teaches v to compare decimal.Decimal values numerically.
func RegisterDecimal(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}
