package advisory

import (
	"strings"

	"github.com/kart-io/sentinel-weather/pkg/errors"
)

// ExtractJSON 返回文本中第一个括号配平的 {...} 片段。
//
// 扫描识别字符串字面量与转义，字符串内的括号不参与配平。
// 从某个 '{' 开始无法配平时，从下一个 '{' 重新尝试。
func ExtractJSON(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := balancedEnd(text, start); end > 0 {
			return text[start:end], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", errors.ErrAdvisoryNoJSON
}

// balancedEnd 返回与 text[start] 配对的 '}' 之后的位置，未配平返回 -1。
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
