package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

const emptySnippet = "No recent trades recorded."

// Snippet 把最近 limit 条记录渲染成可回灌给上游的文本。
func Snippet(records []Record, limit int) string {
	items := tail(records, limit)
	if len(items) == 0 {
		return emptySnippet
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent Trades (last %d):", len(items))
	for _, r := range items {
		fmt.Fprintf(&b, "\n- %s | %s | TP: %s | SL: %s | Q: %s | %s",
			r.Timestamp, r.Decision, r.TakeProfit, r.StopLoss,
			strconv.FormatFloat(r.Quantity, 'f', -1, 64), r.Status)
	}
	return b.String()
}
