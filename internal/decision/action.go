package decision

import (
	"regexp"
	"strings"
)

// Action 是决策文本最终归一到的动作。
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// IsTrade 表示该动作需要调用下单能力。
func (a Action) IsTrade() bool {
	return a == ActionBuy || a == ActionSell
}

func (a Action) String() string { return string(a) }

var proposalPattern = regexp.MustCompile(`(?i)FINAL\s+TRANSACTION\s+PROPOSAL:\s*\*\*(BUY|SELL|HOLD)\*\*`)

// ParseAction 从自由文本中提取 BUY/SELL/HOLD，永不失败。
// 命中 "FINAL TRANSACTION PROPOSAL: **X**" 时以其为准；否则按 BUY、SELL 顺序做子串/前缀匹配，都没有则 HOLD。
func ParseAction(text string) Action {
	if text == "" {
		return ActionHold
	}
	if m := proposalPattern.FindStringSubmatch(text); m != nil {
		return Action(strings.ToUpper(m[1]))
	}
	up := strings.ToUpper(text)
	if strings.Contains(up, " BUY") || strings.HasPrefix(up, "BUY") {
		return ActionBuy
	}
	if strings.Contains(up, " SELL") || strings.HasPrefix(up, "SELL") {
		return ActionSell
	}
	return ActionHold
}
