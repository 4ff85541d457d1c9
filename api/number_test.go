package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		value   float64
		ok      bool
		integer bool
	}{
		{name: "number", raw: `12`, value: 12, ok: true, integer: true},
		{name: "numeric string", raw: `"12"`, value: 12, ok: true, integer: true},
		{name: "padded string", raw: `" 7.5 "`, value: 7.5, ok: true},
		{name: "word", raw: `"twelve"`},
		{name: "nan string", raw: `"NaN"`},
		{name: "object", raw: `{"a":1}`},
		{name: "bool", raw: `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holder struct {
				N number `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.raw+`}`), &holder))

			v, ok := holder.N.float()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.value, v)
			}
			_, isInt := holder.N.integer()
			assert.Equal(t, tt.integer, isInt)
		})
	}
}

func TestNumber_Missing(t *testing.T) {
	var holder struct {
		N number `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &holder))
	_, ok := holder.N.float()
	assert.False(t, ok)
	assert.False(t, holder.N.set)
}

func TestFlag_Unmarshal(t *testing.T) {
	var holder struct {
		A flag `json:"a"`
		B flag `json:"b"`
		C flag `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":true,"b":"true","c":"no"}`), &holder))
	assert.True(t, bool(holder.A))
	assert.True(t, bool(holder.B))
	assert.False(t, bool(holder.C))
}
