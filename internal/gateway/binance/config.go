package binance

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ModePaper = "paper"
	ModeLive  = "live"

	testnetBaseURL    = "https://testnet.binance.vision"
	productionBaseURL = "https://api.binance.com"
)

type Config struct {
	APIKey    string `validate:"required"`
	APISecret string `validate:"required"`
	Mode      string `validate:"oneof=paper live"`
	// BaseURL 覆盖按 Mode 推导出的地址。
	BaseURL     string `validate:"omitempty,url"`
	HTTPTimeout time.Duration

	ProxyURL string `validate:"omitempty,url"`

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

var validate = validator.New()

func (c *Config) withDefaults() Config {
	out := *c
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.APISecret = strings.TrimSpace(out.APISecret)
	out.Mode = strings.ToLower(strings.TrimSpace(out.Mode))
	if out.Mode == "" {
		out.Mode = ModePaper
	}
	out.BaseURL = strings.TrimSpace(out.BaseURL)
	if out.BaseURL == "" {
		out.BaseURL = productionBaseURL
		if out.Mode == ModePaper {
			out.BaseURL = testnetBaseURL
		}
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.ProxyURL = strings.TrimSpace(out.ProxyURL)
	if out.BreakerThreshold <= 0 {
		out.BreakerThreshold = 5
	}
	if out.BreakerCooldown <= 0 {
		out.BreakerCooldown = 60 * time.Second
	}
	return out
}

// Validate 校验补全默认值后的配置。
func (c Config) Validate() error {
	final := c.withDefaults()
	if err := validate.Struct(final); err != nil {
		return fmt.Errorf("invalid binance config: %w", err)
	}
	return nil
}

// Testnet 表示是否连接 Spot 测试网。
func (c Config) Testnet() bool {
	return c.withDefaults().Mode == ModePaper
}
