package bracket

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrader/internal/decision"
)

func TestComputePercent(t *testing.T) {
	p := Compute(100000, decision.ExtractTargets("TP 1.5% SL 0.8%"))
	require.True(t, p.TakeProfit.IsSome())
	require.True(t, p.StopLoss.IsSome())
	assert.InDelta(t, 101500, p.TakeProfit.Unwrap(), 1e-6)
	assert.InDelta(t, 99200, p.StopLoss.Unwrap(), 1e-6)
	assert.True(t, p.Usable())
}

func TestComputeAbsolutePassThrough(t *testing.T) {
	p := Compute(123, decision.ExtractTargets("TP 109K SL 95000"))
	assert.Equal(t, 109000.0, p.TakeProfit.Unwrap())
	assert.Equal(t, 95000.0, p.StopLoss.Unwrap())
	assert.True(t, p.Usable())
}

func TestUsableRequiresBothPositive(t *testing.T) {
	cases := []struct {
		name string
		p    Prices
	}{
		{"only tp", Prices{TakeProfit: optional.Some(1.0), StopLoss: optional.None[float64]()}},
		{"only sl", Prices{TakeProfit: optional.None[float64](), StopLoss: optional.Some(1.0)}},
		{"zero sl", Prices{TakeProfit: optional.Some(1.0), StopLoss: optional.Some(0.0)}},
		{"negative sl", Prices{TakeProfit: optional.Some(1.0), StopLoss: optional.Some(-5.0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.p.Usable())
		})
	}
}

func TestComputePercentStopBeyondHundred(t *testing.T) {
	p := Compute(50, decision.ExtractTargets("TP 10% SL 150%"))
	assert.InDelta(t, 55, p.TakeProfit.Unwrap(), 1e-9)
	assert.Less(t, p.StopLoss.Unwrap(), 0.0)
	assert.False(t, p.Usable())
}
