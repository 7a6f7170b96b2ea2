package erp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name  string
		field any
		want  string
	}{
		{name: "nil", field: nil, want: ""},
		{name: "empty string", field: "", want: ""},
		{name: "plain string", field: "MSC", want: "MSC"},
		{name: "number", field: float64(42), want: "42"},
		{name: "fractional number", field: float64(4.5), want: "4.5"},
		{name: "bool", field: true, want: "true"},
		{name: "v only", field: map[string]any{"v": "20'"}, want: "20'"},
		{name: "r only", field: map[string]any{"r": "rendered"}, want: "rendered"},
		{name: "empty v falls back to r", field: map[string]any{"v": "", "r": "display"}, want: "display"},
		{name: "v wins over r", field: map[string]any{"v": "value", "r": "display"}, want: "value"},
		{name: "numeric v", field: map[string]any{"v": float64(7)}, want: "7"},
		{name: "nested v", field: map[string]any{"v": map[string]any{"v": "inner"}}, want: "inner"},
		{name: "object without v or r", field: map[string]any{"x": "y"}, want: ""},
		{name: "array", field: []any{"a"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, DecodeField(tt.field))
			})
		})
	}
}

func TestDecodeField_WireShapes(t *testing.T) {
	// Exercise the decoder against values exactly as json.Unmarshal produces them
	var row map[string]any
	raw := `{"DepotID":3,"TenDepot":{"v":"Depot Cat Lai","r":"DEPOT CAT LAI"},"Active":{"v":"True"},"Ghi":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	assert.Equal(t, "3", DecodeField(row["DepotID"]))
	assert.Equal(t, "Depot Cat Lai", DecodeField(row["TenDepot"]))
	assert.Equal(t, "True", DecodeField(row["Active"]))
	assert.Equal(t, "", DecodeField(row["Ghi"]))
	assert.Equal(t, "", DecodeField(row["Missing"]))
}
