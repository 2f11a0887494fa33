// Package validator 基于 go-playground/validator 的请求体校验，错误信息支持中英文。
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Language constants for i18n support.
const (
	LangEN = "en"
	LangZH = "zh"
)

// Validator wraps go-playground/validator with translators.
type Validator struct {
	validate *validator.Validate
	trans    map[string]ut.Translator
}

var (
	globalValidator *Validator
	once            sync.Once
)

// Global returns the process-wide validator.
func Global() *Validator {
	once.Do(func() {
		globalValidator = New()
	})
	return globalValidator
}

// New creates a Validator with the weather rules registered.
func New() *Validator {
	v := &Validator{
		validate: validator.New(),
		trans:    make(map[string]ut.Translator),
	}

	// 错误中的字段名使用 json tag
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())

	enTrans, _ := uni.GetTranslator(LangEN)
	_ = en_translations.RegisterDefaultTranslations(v.validate, enTrans)
	v.trans[LangEN] = enTrans

	zhTrans, _ := uni.GetTranslator(LangZH)
	_ = zh_translations.RegisterDefaultTranslations(v.validate, zhTrans)
	v.trans[LangZH] = zhTrans

	v.registerWeatherRules()
	return v
}

// Validate 校验结构体，失败时返回按 lang 翻译的错误。
func (v *Validator) Validate(s interface{}, lang string) *ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError("unknown", "unknown", err.Error())
	}

	trans := v.translator(lang)
	out := &ValidationErrors{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: fe.Translate(trans),
		})
	}
	return out
}

func (v *Validator) translator(lang string) ut.Translator {
	if t, ok := v.trans[lang]; ok {
		return t
	}
	return v.trans[LangEN]
}

// registerWithTranslation 注册自定义规则及其各语言提示。
func (v *Validator) registerWithTranslation(tag string, fn validator.Func, messages map[string]string) {
	_ = v.validate.RegisterValidation(tag, fn)
	for lang, msg := range messages {
		msg := msg
		_ = v.validate.RegisterTranslation(tag, v.translator(lang),
			func(t ut.Translator) error { return t.Add(tag, msg, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(tag, fe.Field())
				return s
			},
		)
	}
}

// LangFromAcceptLanguage 根据 Accept-Language 头选择提示语言。
func LangFromAcceptLanguage(header string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), "zh") {
		return LangZH
	}
	return LangEN
}

// Struct validates s with the global validator.
func Struct(s interface{}, lang string) *ValidationErrors {
	return Global().Validate(s, lang)
}
