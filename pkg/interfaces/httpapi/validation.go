package httpapi

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
)

var validatorOnce sync.Once

// InitValidator registers the request validators on gin's binding engine
func InitValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
		_ = v.RegisterValidation("model_type", validateModelType)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func validateModelType(fl validator.FieldLevel) bool {
	_, err := entities.ParseModelType(fl.Field().String())
	return err == nil
}

// bindingError maps binder failures to a validation error with one detail per field
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrValidation(err.Error())
	}

	appErr := apperrors.ErrValidation("request validation failed")
	for _, fe := range verrs {
		appErr = appErr.WithDetail(fe.Field(), fe.Tag())
	}
	return appErr
}
