package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/summarist/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims and lowercases", input: "  Reader@Example.COM ", expected: "reader@example.com"},
		{name: "collapses repeated dots", input: "avid..reader@example.com", expected: "avid.reader@example.com"},
		{name: "strips edge dots", input: ".avid.reader.@example.com", expected: "avid.reader@example.com"},
		{name: "keeps domain dots", input: "reader@mail.example.com", expected: "reader@mail.example.com"},
		{name: "no at sign", input: " Not-An-Email ", expected: "not-an-email"},
		{name: "two at signs", input: "a@b@example.com", expected: "a@b@example.com"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "r*****@example.com", sanitizer.MaskEmail("reader@example.com"))
	assert.Equal(t, "*@example.com", sanitizer.MaskEmail("r@example.com"))
	assert.Equal(t, "@example.com", sanitizer.MaskEmail("@example.com"))
	assert.Equal(t, "invalid", sanitizer.MaskEmail(" invalid "))
}
