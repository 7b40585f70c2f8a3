package handlers

import (
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators teaches gin's validator about decimal amounts and adds the
// decimal_nonneg and decimal_percent tags used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterAlias("decimal_nonneg", "gte=0")
	v.RegisterAlias("decimal_percent", "gte=0,lte=100")
	return nil
}

// decimalValue exposes a decimal to validator as a float64 so numeric tags apply.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}
