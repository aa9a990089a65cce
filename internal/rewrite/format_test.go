package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"%s", "{0}"},
		{"%s=%d", "{0}={1}"},
		{"no verbs", "no verbs"},
		{"100%%", "100%"},
		{"%5d|%-8s", "{0,5}|{1,-8}"},
		{"%.2f", "{0:F2}"},
		{"%f %x %8.3e", "{0:F} {1:X} {2,8:E3}"},
		{"%1:s %0:s %s", "{1} {0} {1}"},
		{"{%s}", "{{{0}}}"},
		{"%D and %S", "{0} and {1}"},
		{"%.4d", "{0:D4}"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := positionalFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionalFormatErrors(t *testing.T) {
	for _, in := range []string{"50%", "%q", "%*d", "%.3s", "%-"} {
		t.Run(in, func(t *testing.T) {
			_, err := positionalFormat(in)
			assert.Error(t, err)
		})
	}
}
