package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"109K", 109000},
		{"1,250.50", 1250.50},
		{"1.250,50", 1250.50},
		{"1.2M", 1200000},
		{"95000", 95000},
		{"109.000", 109000},
		{"109,000", 109000},
		{"0,8", 0.8},
		{"1.5", 1.5},
		{"1,234,567.89", 1234567.89},
		{"1.234.567,89", 1234567.89},
		{"1,250.500", 1.2505},
		{"1.250,500", 1.2505},
		{"$ 64,000", 64000},
		{"64000 USDT", 64000},
		{"2B", 2e9},
		{"3T", 3e12},
		{" 42k ", 42000},
		{"109,000.", 109000},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.234.567", "K", "$"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseDecimalIsExact(t *testing.T) {
	d, err := ParseDecimal("1.2M")
	require.NoError(t, err)
	assert.Equal(t, "1200000", d.String())
}
