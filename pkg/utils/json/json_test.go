package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	Temperature float64  `json:"temperature"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Label       string   `json:"label"`
}

func TestMarshalUnmarshal(t *testing.T) {
	h := 55.0
	in := reading{Temperature: 21.5, Humidity: &h, Label: "合肥"}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out reading
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in.Temperature, out.Temperature)
	require.NotNil(t, out.Humidity)
	assert.Equal(t, h, *out.Humidity)
	assert.Equal(t, "合肥", out.Label)
}

func TestUnmarshal_IgnoresUnknownFields(t *testing.T) {
	var out reading
	require.NoError(t, Unmarshal([]byte(`{"temperature":1,"extra":true}`), &out))
	assert.Equal(t, 1.0, out.Temperature)
}

func TestUnmarshalStrict_RejectsUnknownFields(t *testing.T) {
	var out reading
	err := UnmarshalStrict([]byte(`{"temperature":1,"extra":true}`), &out)
	assert.Error(t, err)

	require.NoError(t, UnmarshalStrict([]byte(`{"temperature":2,"label":"x"}`), &out))
	assert.Equal(t, 2.0, out.Temperature)
}

func TestNewDecoder(t *testing.T) {
	var out reading
	require.NoError(t, NewDecoder(strings.NewReader(`{"temperature":3.25}`)).Decode(&out))
	assert.Equal(t, 3.25, out.Temperature)
}
