package executor

import (
	"context"
	"fmt"
	"time"

	"autotrader/internal/gateway/notifier"
	"autotrader/internal/logger"
)

// notify 只推送 BUY/SELL，HOLD 与非交易标的不打扰。
func (e *Executor) notify(ctx context.Context, res *Result) {
	if e.notifier == nil || !res.Attempted {
		return
	}
	if err := e.notifier.SendText(ctx, renderResult(*res)); err != nil {
		logger.Warnf("notify failed trace=%s: %v", res.TraceID, err)
		res.warn(fmt.Sprintf("notify: %v", err))
	}
}

func renderResult(res Result) string {
	icon := "✅"
	switch {
	case res.Error != "":
		icon = "⚠️"
	case !res.Executed:
		icon = "📝"
	}
	order := notifier.MessageSection{
		Title: "订单",
		Lines: []string{
			notifier.KV("Symbol", res.Symbol),
			notifier.KV("Side", res.Side),
			notifier.KV("Qty", res.Quantity),
			notifier.KV("Mode", res.Mode),
			notifier.KV("Status", res.Status),
			notifier.KV("Executed", res.Executed),
			notifier.KV("Error", res.Error),
		},
	}
	if res.Raw != nil {
		order.Lines = append(order.Lines, notifier.KV("OrderID", res.Raw.OrderID))
	}
	sections := []notifier.MessageSection{order}
	if res.TP.IsSome() || res.SL.IsSome() {
		targets := notifier.MessageSection{Title: "止盈止损"}
		if res.TP.IsSome() {
			targets.Lines = append(targets.Lines, notifier.KV("TP", formatTarget(res.TP.Unwrap(), res.TPSLPercent)))
		}
		if res.SL.IsSome() {
			targets.Lines = append(targets.Lines, notifier.KV("SL", formatTarget(res.SL.Unwrap(), res.TPSLPercent)))
		}
		if b := res.Bracket; b != nil {
			targets.Lines = append(targets.Lines,
				notifier.KV("Ref", b.ReferencePrice),
				notifier.KV("Placed", b.Placed),
				notifier.KV("BracketError", b.Error),
			)
		}
		sections = append(sections, targets)
	}
	if len(res.Warnings) > 0 {
		sections = append(sections, notifier.MessageSection{Title: "Warnings", Lines: res.Warnings})
	}
	return notifier.StructuredMessage{
		Icon:      icon,
		Title:     fmt.Sprintf("%s %s", res.Side, res.Symbol),
		Sections:  sections,
		Footer:    "trace " + res.TraceID,
		Timestamp: time.Now(),
	}.RenderMarkdown()
}

func formatTarget(v float64, percent bool) string {
	if percent {
		return fmt.Sprintf("%g%%", v)
	}
	return fmt.Sprintf("%g", v)
}
