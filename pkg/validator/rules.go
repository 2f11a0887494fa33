package validator

import (
	"github.com/go-playground/validator/v10"
)

// 自定义规则标签
const (
	// TagProvenance 数据来源只能是 live 或 demo
	TagProvenance = "provenance"
)

func (v *Validator) registerWeatherRules() {
	v.registerWithTranslation(TagProvenance, validateProvenance, map[string]string{
		LangEN: "{0} must be one of live, demo",
		LangZH: "{0}必须是 live 或 demo",
	})
}

func validateProvenance(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "live", "demo":
		return true
	}
	return false
}
