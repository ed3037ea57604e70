package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"autotrader/internal/gateway/exchange"
	"autotrader/internal/logger"
	"autotrader/internal/pkg/circuit"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrCircuitOpen 表示连续失败后熔断器已打开。
var ErrCircuitOpen = circuit.ErrOpen

// stopLimitRatio: 止损限价略低于触发价，保证触发后能成交。
var stopLimitRatio = decimal.RequireFromString("0.999")

// Trader 基于 go-binance 现货接口实现 exchange.Broker。
type Trader struct {
	cfg     Config
	client  spotClient
	breaker *circuit.CircuitBreaker

	mu      sync.Mutex
	filters map[string]symbolFilters
}

var _ exchange.Broker = (*Trader)(nil)

func New(cfg Config) (*Trader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	final := cfg.withDefaults()
	client, err := newRealSpotClient(final)
	if err != nil {
		return nil, err
	}
	logger.Infof("Binance trader ready mode=%s testnet=%v base=%s", final.Mode, final.Testnet(), final.BaseURL)
	return newWithClient(final, client), nil
}

func newWithClient(cfg Config, client spotClient) *Trader {
	final := cfg.withDefaults()
	return &Trader{
		cfg:     final,
		client:  client,
		breaker: circuit.NewCircuitBreaker("binance-spot", final.BreakerThreshold, final.BreakerCooldown),
		filters: make(map[string]symbolFilters),
	}
}

func (t *Trader) Mode() string { return t.cfg.Mode }

func (t *Trader) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var raw string
	err := t.breaker.Do(func() error {
		var err error
		raw, err = t.client.LastPrice(ctx, symbol)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get last price %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse last price %q: %w", raw, err)
	}
	return price, nil
}

func (t *Trader) ExecuteMarket(ctx context.Context, symbol string, side exchange.Side, quantity float64) (exchange.OrderResult, error) {
	var sdkSide binance.SideType
	switch side {
	case exchange.SideBuy:
		sdkSide = binance.SideTypeBuy
	case exchange.SideSell:
		sdkSide = binance.SideTypeSell
	default:
		return exchange.OrderResult{}, fmt.Errorf("unsupported order side: %s", side)
	}
	f, err := t.symbolFilters(ctx, symbol)
	if err != nil {
		return exchange.OrderResult{}, err
	}
	qty := floorToStep(decFromFloat(quantity), f.StepSize)
	if d, _ := decimal.NewFromString(qty); !d.IsPositive() {
		return exchange.OrderResult{}, fmt.Errorf("quantity %v rounds to %s below lot step %s", quantity, qty, f.StepSize)
	}
	clientID := uuid.NewString()

	var resp *binance.CreateOrderResponse
	err = t.breaker.Do(func() error {
		var err error
		resp, err = t.client.CreateMarketOrder(ctx, symbol, sdkSide, qty, clientID)
		return err
	})
	if err != nil {
		return exchange.OrderResult{}, fmt.Errorf("market %s %s qty=%s: %w", side, symbol, qty, err)
	}
	out := exchange.OrderResult{
		Symbol:        symbol,
		Side:          string(side),
		Type:          string(binance.OrderTypeMarket),
		ClientOrderID: clientID,
		Quantity:      qty,
	}
	if resp != nil {
		out.OrderID = resp.OrderID
		out.Status = string(resp.Status)
		out.ExecutedQty = resp.ExecutedQuantity
		if resp.ClientOrderID != "" {
			out.ClientOrderID = resp.ClientOrderID
		}
	}
	return out, nil
}

// PlaceBracketAfterBuy 以 OCO 卖单挂止盈（限价）与止损（止损限价）。
func (t *Trader) PlaceBracketAfterBuy(ctx context.Context, symbol string, quantity, takeProfit, stopLoss float64) exchange.OrderResult {
	out := exchange.OrderResult{Symbol: symbol, Side: string(exchange.SideSell), Type: "OCO"}
	f, err := t.symbolFilters(ctx, symbol)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	stop := floorToStep(decFromFloat(stopLoss), f.TickSize)
	stopDec, _ := decimal.NewFromString(stop)
	req := ocoRequest{
		Symbol:         symbol,
		Quantity:       floorToStep(decFromFloat(quantity), f.StepSize),
		Price:          floorToStep(decFromFloat(takeProfit), f.TickSize),
		StopPrice:      stop,
		StopLimitPrice: floorToStep(stopDec.Mul(stopLimitRatio), f.TickSize),
	}
	out.Quantity = req.Quantity
	out.Price = req.Price
	out.StopPrice = req.StopPrice
	out.StopLimit = req.StopLimitPrice

	var resp *binance.CreateOCOResponse
	err = t.breaker.Do(func() error {
		var err error
		resp, err = t.client.CreateOCO(ctx, req)
		return err
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}
	if resp != nil {
		out.OrderListID = resp.OrderListID
		out.Status = string(resp.ListOrderStatus)
		out.ClientOrderID = resp.ListClientOrderID
	}
	return out
}

func (t *Trader) CancelOpenOrders(ctx context.Context, symbol string) error {
	return t.breaker.Do(func() error {
		return t.client.CancelOpenOrders(ctx, symbol)
	})
}

// symbolFilters 首次访问时拉取 exchangeInfo 并缓存，找不到交易对时缓存空过滤器。
func (t *Trader) symbolFilters(ctx context.Context, symbol string) (symbolFilters, error) {
	t.mu.Lock()
	f, ok := t.filters[symbol]
	t.mu.Unlock()
	if ok {
		return f, nil
	}
	err := t.breaker.Do(func() error {
		var err error
		f, err = t.client.Filters(ctx, symbol)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return symbolFilters{}, err
		}
		return symbolFilters{}, fmt.Errorf("load exchange filters %s: %w", symbol, err)
	}
	t.mu.Lock()
	t.filters[symbol] = f
	t.mu.Unlock()
	return f, nil
}
