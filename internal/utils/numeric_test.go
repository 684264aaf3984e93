package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1234.56", 1234.56},
		{"$1,234.56", 1234.56},
		{"  42 ", 42},
		{"$-5.25", -5.25},
		{"+17", 17},
		{"", 0},
		{"n/a", 0},
		{"abc", 0},
		{"12 cars", 12},
		{"1.2.3", 0}, // two decimal points never parse
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LooseFloat(tt.in))
		})
	}
}
