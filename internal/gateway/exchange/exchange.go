package exchange

import "context"

// Broker 是执行层依赖的下单能力。数量与价格的精度对齐由实现负责。
type Broker interface {
	// Mode 返回 "paper" 或 "live"。
	Mode() string

	LastPrice(ctx context.Context, symbol string) (float64, error)

	ExecuteMarket(ctx context.Context, symbol string, side Side, quantity float64) (OrderResult, error)

	// PlaceBracketAfterBuy 挂止盈止损单，失败写入 OrderResult.Error 而不是返回 error。
	PlaceBracketAfterBuy(ctx context.Context, symbol string, quantity, takeProfit, stopLoss float64) OrderResult

	// CancelOpenOrders 撤销挂单，调用方按 best-effort 处理其错误。
	CancelOpenOrders(ctx context.Context, symbol string) error
}
