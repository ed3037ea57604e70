// Package executor 把决策文本转成交易动作：解析、查台账状态、调用交易所、写台账。
package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"autotrader/internal/bracket"
	"autotrader/internal/decision"
	"autotrader/internal/gateway/exchange"
	"autotrader/internal/gateway/notifier"
	"autotrader/internal/ledger"
	"autotrader/internal/logger"
	"autotrader/internal/pkg/jsonutil"
	"autotrader/internal/pkg/symbol"
	"autotrader/internal/pkg/text"
)

const (
	DefaultQuantity = 0.001

	errSkippedBuy = "Skipped BUY: open position exists"
)

type Config struct {
	Quantity    float64
	QuoteSuffix string
	Retention   int
}

func (c Config) withDefaults() Config {
	if c.Quantity <= 0 {
		c.Quantity = DefaultQuantity
	}
	if c.QuoteSuffix == "" {
		c.QuoteSuffix = symbol.DefaultQuote
	}
	if c.Retention <= 0 {
		c.Retention = ledger.DefaultRetention
	}
	return c
}

type Option func(*Executor)

// WithBroker 配置下单能力；不配置时进入 dry 模式。
func WithBroker(b exchange.Broker) Option {
	return func(e *Executor) { e.broker = b }
}

func WithAuditor(a ledger.Auditor) Option {
	return func(e *Executor) { e.auditor = a }
}

func WithNotifier(n notifier.TextNotifier) Option {
	return func(e *Executor) { e.notifier = n }
}

func WithClassifier(c *symbol.Classifier) Option {
	return func(e *Executor) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithLocks 让多个 Executor 共享同一组币种锁。
func WithLocks(l *ledger.SymbolLocks) Option {
	return func(e *Executor) {
		if l != nil {
			e.locks = l
		}
	}
}

// Executor 保证同一币种最多一条 open 记录，每次调用恰好追加一条台账记录。
type Executor struct {
	cfg        Config
	store      ledger.Store
	broker     exchange.Broker
	auditor    ledger.Auditor
	notifier   notifier.TextNotifier
	classifier *symbol.Classifier
	locks      *ledger.SymbolLocks
	newTraceID func() string
}

func New(cfg Config, store ledger.Store, opts ...Option) *Executor {
	e := &Executor{
		cfg:        cfg.withDefaults(),
		store:      store,
		classifier: symbol.NewClassifier(nil),
		locks:      ledger.NewSymbolLocks(),
		newTraceID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Mode 返回交易所模式，没有交易所时为 dry。
func (e *Executor) Mode() string {
	if e.broker == nil {
		return ModeDry
	}
	return e.broker.Mode()
}

func (e *Executor) Config() Config { return e.cfg }

// Execute 解析文本并执行。
func (e *Executor) Execute(ctx context.Context, sym, raw string) Result {
	d := decision.Parse(raw)
	traceID := e.newTraceID()
	logger.LogDecisionText(symbol.Clean(sym), traceID, raw)
	return e.execute(ctx, traceID, sym, d)
}

// ExecuteDecision 执行已结构化的决策（HTTP/CLI 的 action 覆盖）。
func (e *Executor) ExecuteDecision(ctx context.Context, sym string, d decision.Decision) Result {
	return e.execute(ctx, e.newTraceID(), sym, d)
}

func (e *Executor) execute(ctx context.Context, traceID, sym string, d decision.Decision) Result {
	key := symbol.Clean(sym)
	res := Result{
		TraceID:     traceID,
		Attempted:   d.Action.IsTrade(),
		Symbol:      key,
		Side:        string(d.Action),
		Quantity:    e.cfg.Quantity,
		Mode:        e.Mode(),
		TP:          orNone(d.Targets.TakeProfit),
		SL:          orNone(d.Targets.StopLoss),
		TPSLPercent: d.Targets.Percent,
	}
	log := logger.With("symbol", key, "trace_id", traceID, "action", d.Action)
	if err := symbol.Validate(key); err != nil {
		res.Attempted = false
		res.Error = err.Error()
		log.Warn("decision rejected", "err", err)
		return res
	}

	unlock := e.locks.Lock(key)
	defer unlock()

	records := e.store.Load(ctx, key, e.cfg.Retention)
	lastOpen, long := ledger.LastOpen(records)
	tp, sl := d.Targets.Format()
	rec := ledger.Record{
		Symbol:     key,
		Decision:   string(d.Action),
		Quantity:   e.cfg.Quantity,
		TakeProfit: tp,
		StopLoss:   sl,
	}

	closeOpen := false
	switch {
	case !d.Action.IsTrade():
		rec.Status = ledger.StatusHold
	case !e.classifier.Tradable(key):
		rec.Status = ledger.StatusSkipped
		log.Info("symbol not tradable, recording only")
	default:
		pair := symbol.WithQuote(key, e.cfg.QuoteSuffix)
		res.Symbol = pair
		rec.Symbol = pair
		if d.Action == decision.ActionBuy {
			e.buy(ctx, &res, &rec, pair, long, d.Targets)
		} else {
			closeOpen = e.sell(ctx, &res, &rec, pair, lastOpen, long)
		}
	}
	rec.Error = ledger.ErrorPtr(res.Error)
	res.Status = rec.Status

	if _, err := e.store.Append(ctx, key, rec, e.cfg.Retention); err != nil {
		log.Error("ledger append failed", "err", err)
		res.warn(fmt.Sprintf("ledger append failed: %v", err))
	} else if closeOpen {
		if err := e.store.CloseLastOpen(ctx, key, e.cfg.Retention); err != nil {
			log.Warn("close last open failed", "err", err)
			res.warn(fmt.Sprintf("close last open failed: %v", err))
		}
	}

	e.notify(ctx, &res)
	e.audit(ctx, &res)
	logger.LogExecution(key, traceID, jsonutil.Compact(res))
	log.Info("decision executed", "status", res.Status, "executed", res.Executed, "error", text.Truncate(res.Error, 200))
	return res
}

func (e *Executor) buy(ctx context.Context, res *Result, rec *ledger.Record, pair string, long bool, targets decision.Targets) {
	if long {
		rec.Status = ledger.StatusSkipped
		res.Error = errSkippedBuy
		return
	}
	rec.Status = ledger.StatusOpen
	if e.broker == nil {
		return
	}
	order, err := e.broker.ExecuteMarket(ctx, pair, exchange.SideBuy, e.cfg.Quantity)
	if err != nil {
		rec.Status = ledger.StatusClosed
		res.Error = err.Error()
		return
	}
	res.Executed = true
	res.Raw = &order
	if targets.Any() {
		res.Bracket = e.placeBracket(ctx, pair, targets)
	}
}

// placeBracket 顺序：先取最新价，再换算价格，最后挂单；任何失败只记录在结果里。
func (e *Executor) placeBracket(ctx context.Context, pair string, targets decision.Targets) *BracketOutcome {
	out := &BracketOutcome{}
	ref, err := e.broker.LastPrice(ctx, pair)
	if err != nil {
		out.Error = fmt.Sprintf("last price: %v", err)
		return out
	}
	prices := bracket.Compute(ref, targets)
	out.ReferencePrice = ref
	out.TakeProfit = orNone(prices.TakeProfit)
	out.StopLoss = orNone(prices.StopLoss)
	if !prices.Usable() {
		out.Error = "bracket needs positive take-profit and stop-loss prices"
		return out
	}
	order := e.broker.PlaceBracketAfterBuy(ctx, pair, e.cfg.Quantity, prices.TakeProfit.Unwrap(), prices.StopLoss.Unwrap())
	out.Order = &order
	out.Error = order.Error
	out.Placed = !order.Failed()
	return out
}

// sell 返回是否需要把最近的 open 记录标记为 closed。
// 注意：持仓中卖单下单失败时，本次 SELL 记为 closed 并带错误，但不会关闭之前的 open 记录，下一次 SELL 以原数量重试。
func (e *Executor) sell(ctx context.Context, res *Result, rec *ledger.Record, pair string, lastOpen ledger.Record, long bool) bool {
	qty := e.cfg.Quantity
	if long && lastOpen.Quantity > 0 {
		qty = lastOpen.Quantity
	}
	res.Quantity = qty
	rec.Quantity = qty
	rec.Status = ledger.StatusClosed
	if e.broker == nil {
		return long
	}
	if err := e.broker.CancelOpenOrders(ctx, pair); err != nil {
		res.warn(fmt.Sprintf("cancel open orders: %v", err))
	}
	order, err := e.broker.ExecuteMarket(ctx, pair, exchange.SideSell, qty)
	if err != nil {
		// 卖出失败时保留 open 记录，下一次 SELL 会重试
		res.Error = err.Error()
		return false
	}
	res.Executed = true
	res.Raw = &order
	return long
}

func (e *Executor) audit(ctx context.Context, res *Result) {
	if e.auditor == nil {
		return
	}
	err := e.auditor.RecordExecution(ctx, ledger.AuditEntry{
		TraceID:  res.TraceID,
		Symbol:   res.Symbol,
		Side:     res.Side,
		Executed: res.Executed,
		Error:    res.Error,
		Payload:  []byte(jsonutil.Compact(res)),
	})
	if err != nil {
		logger.Warnf("execution audit failed trace=%s: %v", res.TraceID, err)
		res.warn(fmt.Sprintf("audit: %v", err))
	}
}

func orNone(v optional.Option[float64]) optional.Option[float64] {
	if v == nil {
		return optional.None[float64]()
	}
	return v
}
