package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple words", "Kanchipuram Silk Saree", "kanchipuram-silk-saree"},
		{"diacritics", "Crème Brûlée", "creme-brulee"},
		{"punctuation runs", "Hello   World!", "hello-world"},
		{"leading and trailing", "  --Banarasi--  ", "banarasi"},
		{"storage key", "cart:9F2A-11", "cart-9f2a-11"},
		{"digits kept", "Set of 2", "set-of-2"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input))
		})
	}
}
