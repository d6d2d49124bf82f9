package volley

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"Spring Cup 2025", "spring-cup-2025"},
		{"  Beach   Open  ", "beach-open"},
		{"--Already--slugged--", "already-slugged"},
		{"Coupe d'Été", "coupe-d-t"},
		{"A&B / C", "a-b-c"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.in))
		})
	}
}
