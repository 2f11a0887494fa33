package validator

import "strings"

// ValidationErrors 校验错误集合。
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// FieldError 单个字段的校验错误。
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return ""
	}
	return "validation failed: " + strings.Join(v.Messages(), "; ")
}

// Messages returns all error messages.
func (v *ValidationErrors) Messages() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.Errors))
	for i, fe := range v.Errors {
		out[i] = fe.Message
	}
	return out
}

// FirstField returns the first failing field name.
func (v *ValidationErrors) FirstField() string {
	if v == nil || len(v.Errors) == 0 {
		return ""
	}
	return v.Errors[0].Field
}

// NewValidationError creates a ValidationErrors with a single error.
func NewValidationError(field, tag, message string) *ValidationErrors {
	return &ValidationErrors{Errors: []FieldError{{Field: field, Tag: tag, Message: message}}}
}
