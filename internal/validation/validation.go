// internal/validation/validation.go
package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"filmorate/internal/domain"
)

// FilmBirthday — дата выхода первого в истории фильма.
// Дата релиза не может быть раньше нее.
var FilmBirthday = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// New создает валидатор со всеми доменными правилами Filmorate.
// Стандартные теги (required, max, gt, contains) дополняются кастомными:
// notblank, nospaces, filmrelease, nofuture.
func New() *validator.Validate {
	validate := validator.New()

	// domain.Date валидируется как вложенный time.Time.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Date); ok {
			return d.Time
		}
		return nil
	}, domain.Date{})

	// Значение не состоит из одних пробельных символов.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Значение не содержит пробелов (логин).
	_ = validate.RegisterValidation("nospaces", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), " ")
	})

	// Дата релиза фильма не раньше 1895-12-28 (сама граница допустима).
	_ = validate.RegisterValidation("filmrelease", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !t.Before(FilmBirthday)
	})

	// Дата рождения не строго в будущем.
	_ = validate.RegisterValidation("nofuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !t.After(time.Now())
	})

	return validate
}
