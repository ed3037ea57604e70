package executor

import (
	"github.com/moznion/go-optional"

	"autotrader/internal/gateway/exchange"
	"autotrader/internal/ledger"
)

// ModeDry 表示没有配置交易所凭证，只做逻辑执行。
const ModeDry = "dry"

// Result 是一次执行的对外结果。
type Result struct {
	TraceID     string                   `json:"trace_id"`
	Attempted   bool                     `json:"attempted"`
	Executed    bool                     `json:"executed"`
	Symbol      string                   `json:"symbol"`
	Side        string                   `json:"side"`
	Quantity    float64                  `json:"quantity"`
	Mode        string                   `json:"mode"`
	Error       string                   `json:"error,omitempty"`
	Raw         *exchange.OrderResult    `json:"raw,omitempty"`
	TP          optional.Option[float64] `json:"tp"`
	SL          optional.Option[float64] `json:"sl"`
	TPSLPercent bool                     `json:"tp_sl_percent"`
	Status      ledger.Status            `json:"status"`
	Bracket     *BracketOutcome          `json:"bracket,omitempty"`
	// Warnings 收集 best-effort 步骤（撤单、平仓标记、审计、通知）的失败，不影响 Executed。
	Warnings []string `json:"warnings,omitempty"`
}

// BracketOutcome 描述买入成功后止盈止损单的处理结果。
type BracketOutcome struct {
	ReferencePrice float64                  `json:"reference_price,omitempty"`
	TakeProfit     optional.Option[float64] `json:"tp_price"`
	StopLoss       optional.Option[float64] `json:"sl_price"`
	Placed         bool                     `json:"placed"`
	Order          *exchange.OrderResult    `json:"order,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
