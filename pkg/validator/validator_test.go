package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Temperature *float64 `json:"temperature" validate:"required"`
	Humidity    float64  `json:"humidity" validate:"gte=0,lte=100"`
	Provenance  string   `json:"provenance" validate:"provenance"`
}

func ptr(f float64) *float64 { return &f }

func TestValidate(t *testing.T) {
	v := New()

	assert.Nil(t, v.Validate(sample{Temperature: ptr(20), Humidity: 50, Provenance: "live"}, LangEN))
	assert.Nil(t, v.Validate(sample{Temperature: ptr(20)}, LangEN))

	errs := v.Validate(sample{Humidity: 120, Provenance: "forecast"}, LangEN)
	require.NotNil(t, errs)
	require.Len(t, errs.Errors, 3)
	assert.Equal(t, "temperature", errs.FirstField())
	assert.Equal(t, "required", errs.Errors[0].Tag)
	assert.Contains(t, errs.Errors[0].Message, "temperature")
	assert.Equal(t, "provenance must be one of live, demo", errs.Errors[2].Message)
	assert.Contains(t, errs.Error(), "validation failed: ")
}

func TestValidate_Chinese(t *testing.T) {
	errs := Struct(sample{Temperature: ptr(1), Provenance: "x"}, LangZH)
	require.NotNil(t, errs)
	assert.Equal(t, "provenance必须是 live 或 demo", errs.Errors[0].Message)

	// 未知语言回退英文
	errs = Struct(sample{Temperature: ptr(1), Provenance: "x"}, "fr")
	require.NotNil(t, errs)
	assert.Equal(t, "provenance must be one of live, demo", errs.Errors[0].Message)
}

func TestLangFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, LangZH, LangFromAcceptLanguage("zh-CN,zh;q=0.9"))
	assert.Equal(t, LangEN, LangFromAcceptLanguage("en-US"))
	assert.Equal(t, LangEN, LangFromAcceptLanguage(""))
}

func TestValidationErrors_Nil(t *testing.T) {
	var errs *ValidationErrors
	assert.Empty(t, errs.Error())
	assert.Empty(t, errs.FirstField())
	assert.Nil(t, errs.Messages())
}
