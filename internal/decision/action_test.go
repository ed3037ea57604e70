package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Action
	}{
		{"empty", "", ActionHold},
		{"no keywords", "Market looks choppy, waiting for confirmation.", ActionHold},
		{"proposal sell beats stray buy", "We could buy the dip, but FINAL TRANSACTION PROPOSAL: **SELL**", ActionSell},
		{"proposal case insensitive", "final transaction proposal: **buy**", ActionBuy},
		{"proposal hold beats buy word", "Strong BUY signals. FINAL TRANSACTION PROPOSAL: **HOLD**", ActionHold},
		{"fallback buy prefix", "BUY now", ActionBuy},
		{"fallback buy word", "I would buy here", ActionBuy},
		{"fallback buy before sell", "sell pressure fades, time to buy", ActionBuy},
		{"fallback sell", "Recommend to sell", ActionSell},
		{"substring without space", "BUYBACK program", ActionBuy},
		{"embedded word ignored", "the bullish outlook", ActionHold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAction(tc.text))
		})
	}
}

func TestNormalizeAction(t *testing.T) {
	assert.Equal(t, ActionBuy, NormalizeAction(" Open-Long "))
	assert.Equal(t, ActionBuy, NormalizeAction("long"))
	assert.Equal(t, ActionSell, NormalizeAction("close position"))
	assert.Equal(t, ActionSell, NormalizeAction("SELL"))
	assert.Equal(t, ActionHold, NormalizeAction("wait"))
	assert.Equal(t, ActionHold, NormalizeAction("moon"))
}

func TestActionIsTrade(t *testing.T) {
	assert.True(t, ActionBuy.IsTrade())
	assert.True(t, ActionSell.IsTrade())
	assert.False(t, ActionHold.IsTrade())
}

func TestParseCombines(t *testing.T) {
	d := Parse("FINAL TRANSACTION PROPOSAL: **BUY** with TP 2% and SL 1%")
	assert.Equal(t, ActionBuy, d.Action)
	assert.True(t, d.Targets.Percent)
	assert.InDelta(t, 2.0, d.Targets.TakeProfit.Unwrap(), 1e-9)
	assert.InDelta(t, 1.0, d.Targets.StopLoss.Unwrap(), 1e-9)
}
