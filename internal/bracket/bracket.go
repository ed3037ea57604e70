// Package bracket 把止盈/止损目标换算为绝对价格。
package bracket

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"autotrader/internal/decision"
)

var (
	decOne     = decimal.NewFromInt(1)
	decHundred = decimal.NewFromInt(100)
)

// Prices 是换算后的止盈/止损价格，精度对齐交给下单端。
type Prices struct {
	TakeProfit optional.Option[float64] `json:"tp_price"`
	StopLoss   optional.Option[float64] `json:"sl_price"`
}

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

func decToFloat(val decimal.Decimal) float64 {
	f, _ := val.Float64()
	return f
}

// relativeTarget: ref × (1 ± pct/100)
func relativeTarget(ref, pct float64, up bool) float64 {
	ratio := decFromFloat(pct).Div(decHundred)
	factor := decOne.Sub(ratio)
	if up {
		factor = decOne.Add(ratio)
	}
	return decToFloat(decFromFloat(ref).Mul(factor))
}

// Compute 百分比目标基于参考价换算，绝对目标原样返回。
func Compute(ref float64, t decision.Targets) Prices {
	if !t.Percent {
		return Prices{TakeProfit: t.TakeProfit, StopLoss: t.StopLoss}
	}
	out := Prices{
		TakeProfit: optional.None[float64](),
		StopLoss:   optional.None[float64](),
	}
	if t.TakeProfit.IsSome() {
		out.TakeProfit = optional.Some(relativeTarget(ref, t.TakeProfit.Unwrap(), true))
	}
	if t.StopLoss.IsSome() {
		out.StopLoss = optional.Some(relativeTarget(ref, t.StopLoss.Unwrap(), false))
	}
	return out
}

// Usable 仅当止盈止损都存在且为正时才可挂 OCO。
func (p Prices) Usable() bool {
	return positive(p.TakeProfit) && positive(p.StopLoss)
}

func positive(v optional.Option[float64]) bool {
	return v.IsSome() && v.Unwrap() > 0
}
