package app

import (
	"fmt"
	"strings"

	"autotrader/internal/config"
)

type StartupSummary struct {
	Mode        string
	QuoteSuffix string
	Quantity    float64
	Retention   int
	Ledger      string
	Assets      string
	Schedule    ScheduleSummary
	HTTPAddr    string
	Telegram    bool
}

type ScheduleSummary struct {
	Enabled   bool
	Symbols   []string
	Interval  string
	SourceDir string
}

func newStartupSummary(cfg *config.Config, mode string, httpEnabled bool) *StartupSummary {
	ledgerDesc := cfg.Ledger.Backend + " " + cfg.Trading.ResultsDir
	if cfg.Ledger.Backend == config.LedgerBackendSQLite {
		ledgerDesc = cfg.Ledger.Backend + " " + cfg.Ledger.SQLitePath
	}
	assetsDesc := "(内置列表)"
	if p := strings.TrimSpace(cfg.Assets.Path); p != "" {
		assetsDesc = p
	}
	s := &StartupSummary{
		Mode:        mode,
		QuoteSuffix: cfg.Trading.QuoteSuffix,
		Quantity:    cfg.Trading.Quantity,
		Retention:   cfg.Trading.Retention,
		Ledger:      ledgerDesc,
		Assets:      assetsDesc,
		Schedule: ScheduleSummary{
			Enabled:   cfg.Schedule.Enabled,
			Symbols:   cfg.Schedule.Symbols,
			Interval:  cfg.Schedule.Interval,
			SourceDir: cfg.Schedule.SourceDir,
		},
		Telegram: cfg.Notify.Telegram.Enabled,
	}
	if httpEnabled {
		s.HTTPAddr = cfg.App.HTTPAddr
	}
	return s
}

// Print 输出启动摘要。
func (s *StartupSummary) Print() {
	fmt.Print(s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	title := "启动配置摘要 (STARTUP SUMMARY)"
	b.WriteString(strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "%*s\n", 40+len(title)/2, title)
	b.WriteString(strings.Repeat("=", 80) + "\n")

	b.WriteString("[交易 (TRADING)]\n")
	fmt.Fprintf(&b, "  模式: %s\n", s.Mode)
	fmt.Fprintf(&b, "  计价: %s\n", s.QuoteSuffix)
	fmt.Fprintf(&b, "  默认数量: %g\n", s.Quantity)
	fmt.Fprintf(&b, "  台账保留: %d\n", s.Retention)
	fmt.Fprintf(&b, "  台账: %s\n", s.Ledger)
	fmt.Fprintf(&b, "  资产白名单: %s\n\n", s.Assets)

	b.WriteString("[调度 (SCHEDULE)]\n")
	if !s.Schedule.Enabled {
		b.WriteString("  (未启用)\n\n")
	} else {
		fmt.Fprintf(&b, "  币种: %s\n", formatList(s.Schedule.Symbols))
		fmt.Fprintf(&b, "  周期: %s\n", s.Schedule.Interval)
		fmt.Fprintf(&b, "  决策目录: %s\n\n", s.Schedule.SourceDir)
	}

	b.WriteString("[接口与通知 (HTTP & NOTIFY)]\n")
	fmt.Fprintf(&b, "  HTTP: %s\n", orDash(s.HTTPAddr))
	fmt.Fprintf(&b, "  Telegram: %v\n", s.Telegram)
	b.WriteString(strings.Repeat("=", 80) + "\n")
	return b.String()
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
