package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"wrapped in prose", "好的，以下是结果：\n{\"a\":1}\n希望对你有帮助。", `{"a":1}`},
		{"markdown fence", "```json\n{\"a\":{\"b\":[1,2]}}\n```", `{"a":{"b":[1,2]}}`},
		{"nested braces", `x {"a":{"b":{"c":{}}}} y`, `{"a":{"b":{"c":{}}}}`},
		{"braces inside strings", `{"text":"use } and { freely"}`, `{"text":"use } and { freely"}`},
		{"escaped quote in string", `{"text":"say \"}\" now"} tail`, `{"text":"say \"}\" now"}`},
		{"escaped backslash", `{"path":"C:\\"} {"b":2}`, `{"path":"C:\\"}`},
		{"multiple objects takes first", `{"a":1} and {"b":2}`, `{"a":1}`},
		{"unbalanced prefix then valid", `{ broken {"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NotFound(t *testing.T) {
	for _, in := range []string{"", "I cannot help with that", "} only closing", "{ never closed", `"{"`} {
		_, err := ExtractJSON(in)
		assert.ErrorIs(t, err, errors.ErrAdvisoryNoJSON, in)
	}
}
