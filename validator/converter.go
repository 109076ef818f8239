// Package validator 提供统一的配置校验和错误转换
package validator

import (
	"errors"

	"github.com/KOMKZ/go-yogan-intercept/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidationFailed 通用校验失败错误（模块码 1 = common）
var ErrValidationFailed = errcode.New(1, 1010, "common", "error.common.validation_failed", "validation failed")

// Validatable 可校验接口
type Validatable interface {
	Validate() error
}

// Validate 通用校验函数
// ozzo-validation 错误转换为 LayeredError，字段错误放在 "fields" 数据中
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError 将 ozzo-validation 错误转换为 LayeredError
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string, len(validationErrs))
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}

	return ErrValidationFailed.Wrap(validationErrs).WithData("fields", fields)
}
