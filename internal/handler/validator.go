package handler

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"vedzeb_server/pkg/errorx"
)

// Trans 全局翻译器
var Trans ut.Translator

// InitTrans 初始化英文校验提示
func InitTrans() error {
	// 在 Gin v1.9+ 中 binding.Validator 可能为 nil，需要先初始化
	if binding.Validator == nil {
		fallback := validator.New()
		fallback.SetTagName("binding")
		binding.Validator = &defaultValidator{validator: fallback}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errorx.New(errorx.CodeServerBusy, "unexpected validator engine")
	}

	// 报错信息使用 json / form tag 作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enT := en.New()
	uni := ut.New(enT, enT)
	Trans, _ = uni.GetTranslator("en")
	return en_translations.RegisterDefaultTranslations(v, Trans)
}

// RemoveTopStruct 去除提示信息中的结构体名称，如 "SendCodeRequest.phone" -> "phone"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator 用于在 Gin v1.9+ 中初始化 binding.Validator
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj any) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() any {
	return v.validator
}
