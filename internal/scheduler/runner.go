package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"autotrader/internal/executor"
	"autotrader/internal/logger"
	"autotrader/internal/pkg/symbol"
	textutil "autotrader/internal/pkg/text"
)

// Executor 是 Runner 需要的执行能力。
type Executor interface {
	Execute(ctx context.Context, sym, text string) executor.Result
}

type RunnerConfig struct {
	Symbols        []string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool
}

// Runner 为每个币种启动一个对齐调度的 goroutine：取决策文本，交给执行器。
type Runner struct {
	cfg    RunnerConfig
	source Source
	exec   Executor

	// OnResult 在每次执行后回调，可为空。
	OnResult func(executor.Result)
}

func NewRunner(cfg RunnerConfig, source Source, exec Executor) (*Runner, error) {
	if source == nil || exec == nil {
		return nil, errors.New("scheduler: source and executor are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler: invalid interval %s", cfg.Interval)
	}
	seen := make(map[string]struct{}, len(cfg.Symbols))
	syms := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		s = symbol.Clean(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		syms = append(syms, s)
	}
	cfg.Symbols = syms
	return &Runner{cfg: cfg, source: source, exec: exec}, nil
}

func (r *Runner) Symbols() []string {
	return append([]string(nil), r.cfg.Symbols...)
}

// Run 阻塞直到 ctx 结束。
func (r *Runner) Run(ctx context.Context) error {
	if len(r.cfg.Symbols) == 0 {
		logger.Warnf("scheduler: no symbols configured, idle")
		<-ctx.Done()
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range r.cfg.Symbols {
		sym := sym
		g.Go(func() error {
			s := NewAligned(sym, r.cfg.Interval, r.cfg.Offset)
			s.RunImmediately = r.cfg.RunImmediately
			s.Start(gctx, func(ctx context.Context) { r.Tick(ctx, sym) })
			return nil
		})
	}
	return g.Wait()
}

// Tick 处理单个币种的一轮；没有新文本时直接返回 false。
func (r *Runner) Tick(ctx context.Context, sym string) bool {
	text, err := r.source.Next(ctx, sym)
	if errors.Is(err, ErrNoDecision) {
		logger.Debugf("scheduler[%s]: no new decision", sym)
		return false
	}
	if err != nil {
		logger.Warnf("scheduler[%s]: source error: %v", sym, err)
		return false
	}
	logger.Debugf("scheduler[%s]: new decision %q", sym, textutil.FirstLine(text, 80))
	res := r.exec.Execute(ctx, sym, text)
	logger.Infof("scheduler[%s]: %s status=%s executed=%v err=%s", sym, res.Side, res.Status, res.Executed, res.Error)
	if r.OnResult != nil {
		r.OnResult(res)
	}
	return true
}
