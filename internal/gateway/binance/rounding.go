package binance

import (
	"strings"

	"github.com/shopspring/decimal"
)

const fallbackDecimals = 6

// stepPrecision 由步长推导小数位，例如 "0.00100000" -> 3，"1.00000000" -> 0。
func stepPrecision(step string) int32 {
	step = strings.TrimSpace(step)
	idx := strings.IndexByte(step, '.')
	if idx < 0 {
		return 0
	}
	frac := strings.TrimRight(step[idx+1:], "0")
	return int32(len(frac))
}

// floorToStep 按步长向下取整；步长缺失或非法时保留 6 位小数。
func floorToStep(value decimal.Decimal, step string) string {
	s, err := decimal.NewFromString(strings.TrimSpace(step))
	if err != nil || !s.IsPositive() {
		return value.Round(fallbackDecimals).StringFixed(fallbackDecimals)
	}
	rounded := value.Div(s).Floor().Mul(s)
	return rounded.StringFixed(stepPrecision(step))
}

func decFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
