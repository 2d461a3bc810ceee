package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{"faq", "billing"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["faq","billing"]`, v)
}

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  StringArray
	}{
		{"null column", nil, StringArray{}},
		{"empty", "", StringArray{}},
		{"json null", []byte("null"), StringArray{}},
		{"json array bytes", []byte(`["a","b"]`), StringArray{"a", "b"}},
		{"json array string", ` ["c"] `, StringArray{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			require.NoError(t, got.Scan(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringArrayScanRejectsNonArrays(t *testing.T) {
	var got StringArray
	assert.Error(t, got.Scan("plain tag"))
	assert.Error(t, got.Scan(42))
}
