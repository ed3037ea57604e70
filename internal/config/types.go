package config

import (
	"strings"
	"time"
)

// Config 是 autotrader 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Trading  TradingConfig  `toml:"trading"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Assets   AssetsConfig   `toml:"assets"`
	Binance  BinanceConfig  `toml:"binance"`
	Schedule ScheduleConfig `toml:"schedule"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	// LogFormat 为 text 或 json。
	LogFormat   string `toml:"log_format"`
	LogPath     string `toml:"log_path"`
	DecisionLog string `toml:"decision_log_path"`
	HTTPAddr    string `toml:"http_addr"`
}

// TradingConfig 控制下单模式与默认仓位。
type TradingConfig struct {
	Mode        string  `toml:"mode"` // paper | live
	Quantity    float64 `toml:"quantity"`
	QuoteSuffix string  `toml:"quote_suffix"`
	Retention   int     `toml:"retention"`
	ResultsDir  string  `toml:"results_dir"`
}

const (
	LedgerBackendFile   = "file"
	LedgerBackendSQLite = "sqlite"
)

type LedgerConfig struct {
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path"`
}

// AssetsConfig 指向可热加载的资产白名单，为空时使用内置列表。
type AssetsConfig struct {
	Path string `toml:"path"`
}

type BinanceConfig struct {
	APIKey                 string `toml:"api_key"`
	APISecret              string `toml:"api_secret"`
	BaseURL                string `toml:"base_url"`
	ProxyURL               string `toml:"proxy_url"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	BreakerThreshold       int    `toml:"breaker_threshold"`
	BreakerCooldownSeconds int    `toml:"breaker_cooldown_seconds"`
}

// Enabled 表示凭证齐全，可以构造真实交易所客户端。
func (b BinanceConfig) Enabled() bool {
	return strings.TrimSpace(b.APIKey) != "" && strings.TrimSpace(b.APISecret) != ""
}

func (b BinanceConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

func (b BinanceConfig) BreakerCooldown() time.Duration {
	return time.Duration(b.BreakerCooldownSeconds) * time.Second
}

type ScheduleConfig struct {
	Enabled        bool     `toml:"enabled"`
	Symbols        []string `toml:"symbols"`
	Interval       string   `toml:"interval"`
	OffsetSeconds  int      `toml:"offset_seconds"`
	RunImmediately bool     `toml:"run_immediately"`
	SourceDir      string   `toml:"source_dir"`
}

func (s ScheduleConfig) Offset() time.Duration {
	return time.Duration(s.OffsetSeconds) * time.Second
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// keySet 用于追踪配置文件或环境变量中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
