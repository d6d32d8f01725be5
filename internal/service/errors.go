// internal/service/errors.go
package service

import "errors"

// ErrValidation — ошибка валидации входных данных. Хендлеры транслируют
// ее в HTTP 400; ошибки отсутствия сущностей приходят сентинелами
// пакета store и транслируются в 404.
var ErrValidation = errors.New("validation failed")
