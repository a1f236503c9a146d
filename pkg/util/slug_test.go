package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Simple text",
			input: "Great Service",
			want:  "great-service",
		},
		{
			name:  "Punctuation collapsed",
			input: "Amazing!!! Really... great",
			want:  "amazing-really-great",
		},
		{
			name:  "Leading and trailing separators",
			input: "  --hello world--  ",
			want:  "hello-world",
		},
		{
			name:  "Numbers preserved",
			input: "Top 10 reasons",
			want:  "top-10-reasons",
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
		{
			name:  "Only punctuation",
			input: "!!! ???",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyLongInput(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "testimonial "
	}

	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.NotEmpty(t, slug)
}
