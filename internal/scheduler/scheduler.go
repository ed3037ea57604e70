package scheduler

import (
	"context"
	"time"

	"autotrader/internal/logger"
)

// Aligned 在每个 Interval 边界之后的 Offset 处执行任务，直到 ctx 结束。
type Aligned struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	nowFn func() time.Time
}

func NewAligned(name string, interval, offset time.Duration) *Aligned {
	return &Aligned{Name: name, Interval: interval, Offset: offset, nowFn: time.Now}
}

func (s *Aligned) Start(ctx context.Context, task func(context.Context)) {
	if task == nil {
		logger.Warnf("scheduler[%s]: task is nil, exit", s.Name)
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("scheduler[%s]: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}
	logger.Infof("scheduler[%s]: started interval=%s offset=%s run_immediately=%v", s.Name, s.Interval, s.Offset, s.RunImmediately)

	if s.RunImmediately {
		task(ctx)
	}
	for {
		wakeAt, wait := s.nextWake(s.nowFn())
		logger.Debugf("scheduler[%s]: 下一次执行=%s (in %s)", s.Name, wakeAt.Format(time.RFC3339), wait.Truncate(time.Second))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Infof("scheduler[%s]: ctx done, exit", s.Name)
			return
		case <-timer.C:
		}
		task(ctx)
	}
}

// nextWake 返回下一个对齐时刻；恰好落在边界上时推到下一个周期，避免同一时刻重复执行。
func (s *Aligned) nextWake(now time.Time) (time.Time, time.Duration) {
	now = now.UTC()
	wakeAt := now.Truncate(s.Interval).Add(s.Offset)
	if !wakeAt.After(now) {
		wakeAt = wakeAt.Add(s.Interval)
	}
	return wakeAt, wakeAt.Sub(now)
}
