package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"autotrader/internal/config"
	"autotrader/internal/executor"
	"autotrader/internal/ledger"
	"autotrader/internal/logger"
	"autotrader/internal/scheduler"
	livehttp "autotrader/internal/transport/http/live"
)

// App 负责应用级编排：加载配置→初始化依赖→启动调度与 HTTP 服务。
type App struct {
	cfg      *config.Config
	store    ledger.Store
	exec     *executor.Executor
	runner   *scheduler.Runner
	liveHTTP *livehttp.Server
	closers  []func() error
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	return buildAppWithWire(ctx, cfg, opts)
}

// Run 启动调度器与 HTTP 服务，任一退出即整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.liveHTTP != nil {
		group.Go(func() error {
			if err := a.liveHTTP.Start(ctx); err != nil {
				return fmt.Errorf("live http server error: %w", err)
			}
			return nil
		})
	}
	if a.runner != nil {
		group.Go(func() error {
			return a.runner.Run(ctx)
		})
	}
	return group.Wait()
}

// Executor 暴露执行器，供 CLI 的单次执行使用。
func (a *App) Executor() *executor.Executor {
	if a == nil {
		return nil
	}
	return a.exec
}

func (a *App) Store() ledger.Store {
	if a == nil {
		return nil
	}
	return a.store
}

// Close 按构建的逆序释放资源。
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
