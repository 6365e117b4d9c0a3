package common

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// usernamePattern 用户名允许字母、数字和 @/./+/-/_
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator 字段名取 json 标签，并注册 username 规则
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct 按 validate 标签校验请求体，失败时返回字段级 Validation 错误
//
// partial 对应 PATCH：未提供的字段不触发 required
func ValidateStruct(s interface{}, partial bool) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Internal(err)
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		if partial && fe.Tag() == "required" {
			continue
		}
		fields.Add(fe.Field(), validationMessage(fe))
	}
	return fields.Err()
}

// validationMessage 与 OpenAPI 校验的提示保持一致
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		switch {
		case fe.Kind() == reflect.Slice:
			return "this list may not be empty"
		case fe.Param() == "1":
			return "this field may not be blank"
		}
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	case "username":
		return "enter a valid username, letters, digits and @/./+/-/_ only"
	}
	return fe.Error()
}
