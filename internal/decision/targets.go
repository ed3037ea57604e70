package decision

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"

	"autotrader/internal/pkg/numeric"
)

// Targets 是文本中解析出的止盈/止损。
// Percent 为 true 时两者都是百分比，否则都是绝对价格，不会混用。
type Targets struct {
	TakeProfit optional.Option[float64] `json:"tp"`
	StopLoss   optional.Option[float64] `json:"sl"`
	Percent    bool                     `json:"tp_sl_percent"`
}

var (
	tpPercentPattern  = regexp.MustCompile(`(?:TP|TAKE\s*PROFIT)[^\d%]*([0-9]+(?:[.,][0-9]+)?)%`)
	slPercentPattern  = regexp.MustCompile(`(?:SL|STOP\s*LOSS)[^\d%]*([0-9]+(?:[.,][0-9]+)?)%`)
	tpAbsolutePattern = regexp.MustCompile(`(?:TP|TAKE\s*PROFIT)[^\dKMBT%]*([0-9][0-9.,]*\s*[KMBT]?)`)
	slAbsolutePattern = regexp.MustCompile(`(?:SL|STOP\s*LOSS)[^\dKMBT%]*([0-9][0-9.,]*\s*[KMBT]?)`)
)

// ExtractTargets 解析 TP/SL。百分比写法优先，任一侧命中百分比即整体按百分比处理；
// 数字无法解析时对应一侧为空。
func ExtractTargets(text string) Targets {
	if text == "" {
		return Targets{TakeProfit: optional.None[float64](), StopLoss: optional.None[float64]()}
	}
	up := strings.ToUpper(text)

	tpPct := tpPercentPattern.FindStringSubmatch(up)
	slPct := slPercentPattern.FindStringSubmatch(up)
	if tpPct != nil || slPct != nil {
		return Targets{
			TakeProfit: captureNumber(tpPct),
			StopLoss:   captureNumber(slPct),
			Percent:    true,
		}
	}
	return Targets{
		TakeProfit: captureNumber(tpAbsolutePattern.FindStringSubmatch(up)),
		StopLoss:   captureNumber(slAbsolutePattern.FindStringSubmatch(up)),
	}
}

func captureNumber(m []string) optional.Option[float64] {
	if len(m) < 2 {
		return optional.None[float64]()
	}
	v, err := numeric.Parse(m[1])
	if err != nil {
		return optional.None[float64]()
	}
	return optional.Some(v)
}

// Any 表示至少解析出一侧目标。
func (t Targets) Any() bool {
	return t.TakeProfit.IsSome() || t.StopLoss.IsSome()
}

// Format 返回写入台账的字符串形式，如 "1.5%"、"109000"，缺失为 ""。
func (t Targets) Format() (tp, sl string) {
	return t.formatOne(t.TakeProfit), t.formatOne(t.StopLoss)
}

func (t Targets) formatOne(v optional.Option[float64]) string {
	if v.IsNone() {
		return ""
	}
	s := strconv.FormatFloat(v.Unwrap(), 'f', -1, 64)
	if t.Percent {
		s += "%"
	}
	return s
}
