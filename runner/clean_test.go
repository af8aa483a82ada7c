package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanErrorMessage(t *testing.T) {
	const assetMessage = "Expected 1 to be 2. in http://localhost/assets/foo_spec.js?body=1 (line 42)"

	tests := []struct {
		name     string
		message  string
		short    bool
		expected string
	}{
		{
			name:     "asset message short form",
			message:  assetMessage,
			short:    true,
			expected: "Expected 1 to be 2.",
		},
		{
			name:     "asset message long form",
			message:  assetMessage,
			short:    false,
			expected: "Expected 1 to be 2. in foo_spec.js on line 42",
		},
		{
			name:     "nested asset path keeps the spec path",
			message:  "boom in http://localhost:8888/assets/models/cart_spec.js?body=1 (line 7)",
			short:    false,
			expected: "boom in models/cart_spec.js on line 7",
		},
		{
			name:     "plain message passes through short",
			message:  "Expected true to be false.",
			short:    true,
			expected: "Expected true to be false.",
		},
		{
			name:     "plain message passes through long",
			message:  "Expected true to be false.",
			short:    false,
			expected: "Expected true to be false.",
		},
		{
			name:     "empty message",
			message:  "",
			short:    true,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanErrorMessage(tt.message, tt.short))
		})
	}
}
