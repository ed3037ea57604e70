package symbol

import (
	"errors"
	"strings"
	"unicode"
)

const DefaultQuote = "USDT"

// DefaultAssets 是内置的已知币种清单，assets 文件缺失时使用。
var DefaultAssets = []string{
	"BTC", "ETH", "ADA", "SOL", "DOT", "AVAX", "MATIC", "LINK", "UNI", "AAVE",
	"XRP", "LTC", "BCH", "EOS", "TRX", "XLM", "VET", "ALGO", "ATOM", "LUNA",
	"NEAR", "FTM", "CRO", "SAND", "MANA", "AXS", "GALA", "ENJ", "CHZ", "BAT",
	"ZEC", "DASH", "XMR", "DOGE", "SHIB", "PEPE", "FLOKI", "BNB", "USDT", "USDC",
	"TON", "ICP", "HBAR", "THETA", "FIL", "ETC", "MKR", "APT", "LDO", "OP",
	"IMX", "GRT", "RUNE", "FLOW", "EGLD", "XTZ", "MINA", "ROSE", "KAVA",
}

// Clean 去空白并转大写，台账目录名即由此得到。
func Clean(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var (
	ErrEmpty   = errors.New("symbol is required")
	ErrInvalid = errors.New("invalid symbol")
)

// Validate 校验清洗后的代码可以直接作为台账目录名。
func Validate(s string) error {
	s = Clean(s)
	if s == "" {
		return ErrEmpty
	}
	if strings.ContainsAny(s, `/\:`) || strings.ContainsRune(s, 0) || strings.Trim(s, ".") == "" {
		return ErrInvalid
	}
	return nil
}

// WithQuote 在缺少计价后缀时补上，例如 BTC -> BTCUSDT。
func WithQuote(s, quote string) string {
	s = Clean(s)
	quote = Clean(quote)
	if quote == "" {
		quote = DefaultQuote
	}
	if s == "" || strings.HasSuffix(s, quote) {
		return s
	}
	return s + quote
}

// AssetSet 判断资产是否在白名单内。
type AssetSet interface {
	Contains(asset string) bool
}

// Excluder 由支持屏蔽名单的 AssetSet 实现。
type Excluder interface {
	Excludes(asset string) bool
}

type staticSet map[string]struct{}

func (s staticSet) Contains(asset string) bool {
	_, ok := s[Clean(asset)]
	return ok
}

// NewAssetSet 用给定列表构造一个只读白名单。
func NewAssetSet(assets []string) AssetSet {
	set := make(staticSet, len(assets))
	for _, a := range assets {
		if a = Clean(a); a != "" {
			set[a] = struct{}{}
		}
	}
	return set
}

// Classifier 判断一个符号是否可交易：先查白名单，再用短代码启发式兜底。
// 启发式会把任意 ≤4 位的字母数字串当成币种，误判是已知行为。
type Classifier struct {
	assets AssetSet
}

func NewClassifier(assets AssetSet) *Classifier {
	if assets == nil {
		assets = NewAssetSet(DefaultAssets)
	}
	return &Classifier{assets: assets}
}

func (c *Classifier) Tradable(sym string) bool {
	s := Clean(sym)
	if s == "" {
		return false
	}
	if c.assets.Contains(s) {
		return true
	}
	if ex, ok := c.assets.(Excluder); ok && ex.Excludes(s) {
		return false
	}
	return looksLikeTicker(s)
}

func looksLikeTicker(s string) bool {
	if len([]rune(s)) > 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
