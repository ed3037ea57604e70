package config

import (
	"fmt"
	"strings"

	"autotrader/internal/scheduler"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Ledger.validate(); err != nil {
		return err
	}
	if err := c.Schedule.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TradingConfig) validate() error {
	switch t.Mode {
	case "paper", "live":
	default:
		return fmt.Errorf("trading.mode must be paper or live, got %q", t.Mode)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("trading.quantity must be > 0")
	}
	if t.Retention <= 0 {
		return fmt.Errorf("trading.retention must be > 0")
	}
	if strings.TrimSpace(t.ResultsDir) == "" {
		return fmt.Errorf("trading.results_dir cannot be empty")
	}
	return nil
}

func (l *LedgerConfig) validate() error {
	switch l.Backend {
	case LedgerBackendFile, LedgerBackendSQLite:
		return nil
	default:
		return fmt.Errorf("ledger.backend must be file or sqlite, got %q", l.Backend)
	}
}

func (s *ScheduleConfig) validate() error {
	if s.OffsetSeconds < 0 {
		return fmt.Errorf("schedule.offset_seconds must be >= 0")
	}
	if _, ok := scheduler.ParseInterval(s.Interval); !ok {
		return fmt.Errorf("schedule.interval invalid: %q", s.Interval)
	}
	if s.Enabled && len(s.Symbols) == 0 {
		return fmt.Errorf("schedule.enabled requires at least one symbol")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" || strings.TrimSpace(tg.ChatID) == "" {
		return fmt.Errorf("notify.telegram.enabled requires bot_token and chat_id")
	}
	return nil
}
