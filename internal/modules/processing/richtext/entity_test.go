package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"&lt;hello&gt; &amp; world", "<hello> & world"},
		{"caf&eacute; &#8211; &#x2014;", "café – —"},
		{"plain text", "plain text"},
		{"a & b", "a & b"},
		{"&bogus; &#xZZ;", "&bogus; &#xZZ;"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEntities(tt.in))
		})
	}
}

func TestDecodeEntitiesIdempotentOnPlainText(t *testing.T) {
	once := DecodeEntities("Terms &amp; Conditions")
	assert.Equal(t, "Terms & Conditions", once)
	assert.Equal(t, once, DecodeEntities(once))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello World & more", PlainText("<strong>Hello</strong>\n  World &amp; more"))
	assert.Equal(t, "<hello> & world", PlainText("&lt;hello&gt; &amp; world"))
	assert.Equal(t, "kept", PlainText("<script>var x = '<b>';</script>kept<style>b{}</style>"))
	assert.Equal(t, "", PlainText(""))
}
