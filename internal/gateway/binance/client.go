package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adshao/go-binance/v2"
)

// symbolFilters 是 LOT_SIZE / PRICE_FILTER 的精简视图，空串表示无该过滤器。
type symbolFilters struct {
	StepSize string
	TickSize string
}

type ocoRequest struct {
	Symbol         string
	Quantity       string
	Price          string
	StopPrice      string
	StopLimitPrice string
}

// spotClient 是 Trader 用到的 SDK 子集，测试中注入假实现。
type spotClient interface {
	LastPrice(ctx context.Context, symbol string) (string, error)
	Filters(ctx context.Context, symbol string) (symbolFilters, error)
	CreateMarketOrder(ctx context.Context, symbol string, side binance.SideType, quantity, clientOrderID string) (*binance.CreateOrderResponse, error)
	CancelOpenOrders(ctx context.Context, symbol string) error
	CreateOCO(ctx context.Context, req ocoRequest) (*binance.CreateOCOResponse, error)
}

type realSpotClient struct {
	client *binance.Client
}

func newRealSpotClient(cfg Config) (*realSpotClient, error) {
	client := binance.NewClient(cfg.APIKey, cfg.APISecret)
	client.BaseURL = cfg.BaseURL
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &realSpotClient{client: client}, nil
}

func (r *realSpotClient) LastPrice(ctx context.Context, symbol string) (string, error) {
	prices, err := r.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range prices {
		if p != nil && strings.EqualFold(p.Symbol, symbol) {
			return p.Price, nil
		}
	}
	return "", fmt.Errorf("no ticker price for %s", symbol)
}

func (r *realSpotClient) Filters(ctx context.Context, symbol string) (symbolFilters, error) {
	info, err := r.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return symbolFilters{}, err
	}
	for _, s := range info.Symbols {
		if !strings.EqualFold(s.Symbol, symbol) {
			continue
		}
		var out symbolFilters
		if lot := s.LotSizeFilter(); lot != nil {
			out.StepSize = lot.StepSize
		}
		if pf := s.PriceFilter(); pf != nil {
			out.TickSize = pf.TickSize
		}
		return out, nil
	}
	return symbolFilters{}, nil
}

func (r *realSpotClient) CreateMarketOrder(ctx context.Context, symbol string, side binance.SideType, quantity, clientOrderID string) (*binance.CreateOrderResponse, error) {
	svc := r.client.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(quantity)
	if clientOrderID != "" {
		svc = svc.NewClientOrderID(clientOrderID)
	}
	return svc.Do(ctx)
}

func (r *realSpotClient) CancelOpenOrders(ctx context.Context, symbol string) error {
	_, err := r.client.NewCancelOpenOrdersService().Symbol(symbol).Do(ctx)
	return err
}

func (r *realSpotClient) CreateOCO(ctx context.Context, req ocoRequest) (*binance.CreateOCOResponse, error) {
	return r.client.NewCreateOCOService().
		Symbol(req.Symbol).
		Side(binance.SideTypeSell).
		Quantity(req.Quantity).
		Price(req.Price).
		StopPrice(req.StopPrice).
		StopLimitPrice(req.StopLimitPrice).
		StopLimitTimeInForce(binance.TimeInForceTypeGTC).
		Do(ctx)
}
