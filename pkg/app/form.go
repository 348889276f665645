package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 所有错误消息拼接为单个字符串
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 以 key:message 形式输出错误映射
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid binds request params and validates them
// BindAndValid 绑定请求参数并验证
// 验证错误消息经过 context 中的翻译器翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err != nil {
		validationErrs, ok := err.(val.ValidationErrors)
		if !ok {
			errs = append(errs, &ValidError{
				Key:     "body",
				Message: err.Error(),
			})
			return false, errs
		}

		trans, _ := c.Value("trans").(ut.Translator)
		for _, fieldErr := range validationErrs {
			message := fieldErr.Error()
			if trans != nil {
				message = fieldErr.Translate(trans)
			}
			errs = append(errs, &ValidError{
				Key:     fieldErr.Field(),
				Message: message,
			})
		}
		return false, errs
	}

	return true, nil
}
