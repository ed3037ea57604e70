package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autotrader/internal/assets"
	"autotrader/internal/config"
	"autotrader/internal/executor"
	"autotrader/internal/gateway/binance"
	"autotrader/internal/gateway/exchange"
	"autotrader/internal/gateway/notifier"
	"autotrader/internal/ledger"
	"autotrader/internal/logger"
	"autotrader/internal/pkg/symbol"
	"autotrader/internal/scheduler"
	livehttp "autotrader/internal/transport/http/live"
)

const appName = "autotrader"

// AppBuilder 按配置组装依赖；各构造函数可替换，便于测试。
type AppBuilder struct {
	cfg *config.Config

	storeFn      func(config.TradingConfig, config.LedgerConfig) (ledger.Store, error)
	brokerFn     func(config.TradingConfig, config.BinanceConfig) (exchange.Broker, error)
	classifierFn func(config.AssetsConfig) (*symbol.Classifier, error)
	notifierFn   func(config.NotifyConfig) notifier.TextNotifier

	skipHTTP bool
}

type AppBuilderOption func(*AppBuilder)

// WithBroker 用给定实现替代按配置构造的交易所。
func WithBroker(b exchange.Broker) AppBuilderOption {
	return func(ab *AppBuilder) {
		ab.brokerFn = func(config.TradingConfig, config.BinanceConfig) (exchange.Broker, error) { return b, nil }
	}
}

// WithoutHTTP 跳过 HTTP 服务，CLI 单次命令使用。
func WithoutHTTP() AppBuilderOption {
	return func(ab *AppBuilder) { ab.skipHTTP = true }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		storeFn:      buildStore,
		brokerFn:     buildBroker,
		classifierFn: buildClassifier,
		notifierFn:   buildNotifier,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (app *App, err error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	app = &App{cfg: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if path := strings.TrimSpace(cfg.App.DecisionLog); path != "" {
		f, err := openAppend(path)
		if err != nil {
			return nil, fmt.Errorf("open decision log: %w", err)
		}
		logger.SetDecisionWriter(f)
		app.closers = append(app.closers, func() error {
			logger.SetDecisionWriter(nil)
			return f.Close()
		})
	}

	store, err := b.storeFn(cfg.Trading, cfg.Ledger)
	if err != nil {
		return nil, err
	}
	app.store = store
	if c, ok := store.(interface{ Close() error }); ok {
		app.closers = append(app.closers, c.Close)
	}

	classifier, err := b.classifierFn(cfg.Assets)
	if err != nil {
		return nil, err
	}
	broker, err := b.brokerFn(cfg.Trading, cfg.Binance)
	if err != nil {
		return nil, err
	}

	opts := []executor.Option{executor.WithClassifier(classifier)}
	if broker != nil {
		opts = append(opts, executor.WithBroker(broker))
	}
	if auditor, ok := store.(ledger.Auditor); ok {
		opts = append(opts, executor.WithAuditor(auditor))
	}
	if n := b.notifierFn(cfg.Notify); n != nil {
		opts = append(opts, executor.WithNotifier(n))
	}
	app.exec = executor.New(executor.Config{
		Quantity:    cfg.Trading.Quantity,
		QuoteSuffix: cfg.Trading.QuoteSuffix,
		Retention:   cfg.Trading.Retention,
	}, store, opts...)

	if cfg.Schedule.Enabled {
		interval, ok := scheduler.ParseInterval(cfg.Schedule.Interval)
		if !ok {
			return nil, fmt.Errorf("invalid schedule interval %q", cfg.Schedule.Interval)
		}
		if err := os.MkdirAll(cfg.Schedule.SourceDir, 0o755); err != nil {
			return nil, fmt.Errorf("create source dir: %w", err)
		}
		runner, err := scheduler.NewRunner(scheduler.RunnerConfig{
			Symbols:        cfg.Schedule.Symbols,
			Interval:       interval,
			Offset:         cfg.Schedule.Offset(),
			RunImmediately: cfg.Schedule.RunImmediately,
		}, scheduler.NewDirSource(cfg.Schedule.SourceDir), app.exec)
		if err != nil {
			return nil, err
		}
		app.runner = runner
	}

	if !b.skipHTTP {
		server, err := livehttp.NewServer(livehttp.ServerConfig{
			Addr:     cfg.App.HTTPAddr,
			Store:    store,
			Executor: app.exec,
			Info: livehttp.Info{
				Name:        appName,
				Mode:        app.exec.Mode(),
				QuoteSuffix: cfg.Trading.QuoteSuffix,
				Retention:   cfg.Trading.Retention,
				Symbols:     cfg.Schedule.Symbols,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 live HTTP 失败: %w", err)
		}
		app.liveHTTP = server
	}

	app.Summary = newStartupSummary(cfg, app.exec.Mode(), app.liveHTTP != nil)
	return app, nil
}

func buildStore(trading config.TradingConfig, cfg config.LedgerConfig) (ledger.Store, error) {
	switch cfg.Backend {
	case config.LedgerBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		store, err := ledger.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("初始化 SQLite 台账失败: %w", err)
		}
		logger.Infof("✓ SQLite 台账: %s", cfg.SQLitePath)
		return store, nil
	default:
		logger.Infof("✓ 文件台账: %s", trading.ResultsDir)
		return ledger.NewFileStore(trading.ResultsDir), nil
	}
}

// buildBroker 凭证缺失时返回 nil，执行器进入 dry 模式。
func buildBroker(trading config.TradingConfig, cfg config.BinanceConfig) (exchange.Broker, error) {
	if !cfg.Enabled() {
		logger.Warnf("Binance 凭证未配置，执行器以 dry 模式运行")
		return nil, nil
	}
	trader, err := binance.New(binance.Config{
		APIKey:           cfg.APIKey,
		APISecret:        cfg.APISecret,
		Mode:             trading.Mode,
		BaseURL:          cfg.BaseURL,
		ProxyURL:         cfg.ProxyURL,
		HTTPTimeout:      cfg.Timeout(),
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerCooldown:  cfg.BreakerCooldown(),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Binance 客户端失败: %w", err)
	}
	logger.Infof("✓ Binance %s 模式", trader.Mode())
	return trader, nil
}

func buildClassifier(cfg config.AssetsConfig) (*symbol.Classifier, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return symbol.NewClassifier(nil), nil
	}
	reg, err := assets.NewRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("加载资产白名单失败: %w", err)
	}
	reg.OnChange(func(s assets.Snapshot) {
		logger.Infof("资产白名单已更新 version=%d assets=%d blocked=%d", s.Version, len(s.Assets), len(s.Blocked))
	})
	return symbol.NewClassifier(reg), nil
}

func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	if !cfg.Telegram.Enabled {
		return nil
	}
	return notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// OpenStore 只构造台账，供 CLI 的查询命令使用。
func OpenStore(cfg *config.Config) (ledger.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildStore(cfg.Trading, cfg.Ledger)
}
