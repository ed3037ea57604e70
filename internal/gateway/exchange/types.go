// Package exchange defines the broker capability consumed by the executor,
// so the execution logic does not depend on a concrete venue.
package exchange

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderResult is the venue response reduced to the fields the ledger and API expose.
type OrderResult struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side,omitempty"`
	Type          string `json:"type,omitempty"`
	OrderID       int64  `json:"order_id,omitempty"`
	OrderListID   int64  `json:"order_list_id,omitempty"` // OCO
	ClientOrderID string `json:"client_order_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Quantity      string `json:"quantity,omitempty"`     // quantity actually sent, after lot rounding
	ExecutedQty   string `json:"executed_qty,omitempty"` // filled
	Price         string `json:"price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	StopLimit     string `json:"stop_limit_price,omitempty"`
	Error         string `json:"error,omitempty"`
}

func (r OrderResult) Failed() bool {
	return r.Error != ""
}
