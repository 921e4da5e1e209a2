package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// summitRefPattern - канонический код вершины: ассоциация/регион-номер, например JA/NS-001 или W7A/AE-001
var summitRefPattern = regexp.MustCompile(`^[A-Z0-9]{1,4}/[A-Z0-9]{2}-[0-9]{3}$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("summitref", func(fl validator.FieldLevel) bool {
		return IsSummitRef(fl.Field().String())
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// IsSummitRef проверяет канонический формат кода вершины
func IsSummitRef(ref string) bool {
	return summitRefPattern.MatchString(ref)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
