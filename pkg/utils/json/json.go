// Package json provides a high-performance JSON serialization wrapper.
// It uses sonic on amd64/arm64 and falls back to encoding/json elsewhere.
package json

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// UnmarshalStrict decodes JSON bytes into v and rejects object keys
	// that have no matching struct field.
	UnmarshalStrict func(data []byte, v interface{}) error

	// NewDecoder creates a new JSON decoder for the reader.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Decoder is a JSON decoder interface.
type Decoder interface {
	Decode(v interface{}) error
}

// RawMessage is a raw encoded JSON value.
type RawMessage = stdjson.RawMessage

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		strict := sonic.Config{DisallowUnknownFields: true}.Froze()
		Marshal = sonic.Marshal
		Unmarshal = sonic.Unmarshal
		UnmarshalStrict = strict.Unmarshal
		NewDecoder = func(r io.Reader) Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		}
		usingSonic = true
		return
	}

	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	UnmarshalStrict = func(data []byte, v interface{}) error {
		dec := stdjson.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	NewDecoder = func(r io.Reader) Decoder {
		return stdjson.NewDecoder(r)
	}
}

// IsUsingSonic returns true if sonic is being used for JSON operations.
func IsUsingSonic() bool {
	return usingSonic
}
