package config

import (
	"path/filepath"
	"strings"
)

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultAppHTTPAddr     = ":9991"
	defaultTradingMode     = "paper"
	defaultTradingQuantity = 0.001
	defaultQuoteSuffix     = "USDT"
	defaultRetention       = 20
	defaultResultsDir      = "./results"
	defaultLedgerBackend   = LedgerBackendFile
	defaultSQLiteFile      = "ledger.db"
	defaultBinanceTimeout  = 15
	defaultBreakerTrips    = 5
	defaultBreakerCooldown = 60
	defaultInterval        = "30m"
	defaultSourceDirName   = "decisions"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.Ledger.applyDefaults(keys, c.Trading.ResultsDir)
	c.Binance.applyDefaults(keys)
	c.Schedule.applyDefaults(keys, c.Trading.ResultsDir)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	t.Mode = strings.ToLower(strings.TrimSpace(t.Mode))
	t.QuoteSuffix = strings.ToUpper(strings.TrimSpace(t.QuoteSuffix))
	applyFieldDefaults(keys,
		stringFieldDefault("trading.mode", &t.Mode, defaultTradingMode),
		stringFieldDefault("trading.quote_suffix", &t.QuoteSuffix, defaultQuoteSuffix),
		stringFieldDefault("trading.results_dir", &t.ResultsDir, defaultResultsDir),
		fieldDefault{
			key:   "trading.quantity",
			need:  func() bool { return t.Quantity == 0 },
			apply: func() { t.Quantity = defaultTradingQuantity },
		},
		fieldDefault{
			key:   "trading.retention",
			need:  func() bool { return t.Retention == 0 },
			apply: func() { t.Retention = defaultRetention },
		},
	)
}

func (l *LedgerConfig) applyDefaults(keys keySet, resultsDir string) {
	l.Backend = strings.ToLower(strings.TrimSpace(l.Backend))
	applyFieldDefaults(keys,
		stringFieldDefault("ledger.backend", &l.Backend, defaultLedgerBackend),
	)
	// sqlite_path 依赖 results_dir，空值时总是推导
	if strings.TrimSpace(l.SQLitePath) == "" {
		l.SQLitePath = filepath.Join(resultsDir, defaultSQLiteFile)
	}
}

func (b *BinanceConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "binance.timeout_seconds",
			need:  func() bool { return b.TimeoutSeconds <= 0 },
			apply: func() { b.TimeoutSeconds = defaultBinanceTimeout },
		},
		fieldDefault{
			key:   "binance.breaker_threshold",
			need:  func() bool { return b.BreakerThreshold <= 0 },
			apply: func() { b.BreakerThreshold = defaultBreakerTrips },
		},
		fieldDefault{
			key:   "binance.breaker_cooldown_seconds",
			need:  func() bool { return b.BreakerCooldownSeconds <= 0 },
			apply: func() { b.BreakerCooldownSeconds = defaultBreakerCooldown },
		},
	)
}

func (s *ScheduleConfig) applyDefaults(keys keySet, resultsDir string) {
	s.Symbols = normalizeSymbols(s.Symbols)
	applyFieldDefaults(keys,
		stringFieldDefault("schedule.interval", &s.Interval, defaultInterval),
	)
	if strings.TrimSpace(s.SourceDir) == "" {
		s.SourceDir = filepath.Join(resultsDir, defaultSourceDirName)
	}
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// normalizeSymbols 支持 "BTC,ETH" 这种来自环境变量的逗号写法，并去重。
func normalizeSymbols(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
