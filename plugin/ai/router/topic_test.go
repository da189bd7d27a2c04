package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{
			name:     "single word with suffix",
			input:    "Atatürk kimdir",
			expected: "Atatürk",
		},
		{
			name:     "multi word title case",
			input:    "Mustafa Kemal Atatürk kimdir",
			expected: "Mustafa Kemal Atatürk",
		},
		{
			name:     "lowercase input capitalized",
			input:    "fotosentez nedir",
			expected: "Fotosentez",
		},
		{
			name:     "turkish dotted capital",
			input:    "istanbul tarihi",
			expected: "İstanbul",
		},
		{
			name:     "quotes stripped",
			input:    `"Çanakkale Savaşı" anlat`,
			expected: "Çanakkale Savaşı",
		},
		{
			name:     "empty after stripping falls back",
			input:    "özetle anlat",
			fallback: "Atatürk",
			expected: "Atatürk",
		},
		{
			name:     "empty input empty fallback",
			input:    "kimdir",
			fallback: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractTopic(tt.input, tt.fallback))
		})
	}
}

func TestExtractFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Format
	}{
		{
			name:     "default",
			input:    "Atatürk kimdir",
			expected: Format{Length: LengthNormal, Layout: LayoutParagraph},
		},
		{
			name:     "short summary",
			input:    "Atatürk hayatını kısa özetle",
			expected: Format{Length: LengthShort, Layout: LayoutParagraph},
		},
		{
			name:     "long detailed",
			input:    "Osmanlı tarihini detaylı anlat",
			expected: Format{Length: LengthLong, Layout: LayoutParagraph},
		},
		{
			name:     "continue",
			input:    "devam et daha fazla anlat",
			expected: Format{Length: LengthContinue, Layout: LayoutParagraph},
		},
		{
			name:     "list layout",
			input:    "madde madde anlat",
			expected: Format{Length: LengthNormal, Layout: LayoutList},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractFormat(tt.input))
		})
	}
}

func TestFormatSentences(t *testing.T) {
	assert.Equal(t, 3, Format{Length: LengthShort}.Sentences())
	assert.Equal(t, 12, Format{Length: LengthLong}.Sentences())
	assert.Equal(t, 15, Format{Length: LengthContinue}.Sentences())
	assert.Equal(t, 6, Format{Length: LengthNormal}.Sentences())
}
