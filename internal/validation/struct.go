package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/tastytrail-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях используем имя поля из json-тега, как его видит клиент.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("mobile", validateMobile); err != nil {
		panic(fmt.Sprintf("validation: регистрация тега mobile: %v", err))
	}
	if err := validate.RegisterValidation("role", validateRole); err != nil {
		panic(fmt.Sprintf("validation: регистрация тега role: %v", err))
	}
	if err := validate.RegisterValidation("bcryptmax", validateBcryptMax); err != nil {
		panic(fmt.Sprintf("validation: регистрация тега bcryptmax: %v", err))
	}
}

// Struct проверяет структуру по тегам validate и возвращает первую ошибку
// в виде понятного пользователю сообщения.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return errors.New(describe(fieldErrs[0]))
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	_, ok := models.ValidRoles[fl.Field().String()]
	return ok
}

// validateBcryptMax ограничивает пароль в байтах: bcrypt не принимает больше 72.
func validateBcryptMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", field)
	case "min":
		return fmt.Sprintf("поле %s должно быть не менее %s символов", field, fe.Param())
	case "max":
		return fmt.Sprintf("поле %s должно быть не более %s символов", field, fe.Param())
	case "email":
		return "некорректный формат email"
	case "mobile":
		return fmt.Sprintf("номер телефона должен состоять ровно из %d цифр", MobileLength)
	case "bcryptmax":
		return fmt.Sprintf("поле %s должно занимать не более %d байт", field, MaxPasswordBytes)
	case "role":
		return fmt.Sprintf("роль должна быть одной из: %s, %s, %s", models.RoleUser, models.RoleOwner, models.RoleDeliverBoy)
	default:
		return fmt.Sprintf("поле %s заполнено некорректно", field)
	}
}
