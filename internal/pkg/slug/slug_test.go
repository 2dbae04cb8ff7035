package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	cases := map[string]string{
		"The Go Programming Language": "the-go-programming-language",
		"Café & Crème":                "cafe-creme",
		"  spaces   everywhere  ":     "spaces-everywhere",
		"UPPER lower 123":             "upper-lower-123",
		"---already--hyphened---":     "already-hyphened",
		"":                            "",
	}
	for input, want := range cases {
		assert.Equal(t, want, From(input), "input %q", input)
	}
}
