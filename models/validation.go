package models

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// NewValidator 返回注册了自定义规则的验证器
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return slices.Contains(Genres, fl.Field().String())
	})
	// max 按字符计数，bcrypt 的限制是字节数
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	return v
}
