package decision

import "strings"

// NormalizeAction 统一动作名称，兼容 buy/long 等同义词。
// 供结构化入口（HTTP、CLI 的 action 覆盖）使用，ParseAction 不依赖它。
func NormalizeAction(a string) Action {
	replacer := strings.NewReplacer(" ", "_", "-", "_")
	a = strings.ToLower(strings.TrimSpace(a))
	a = replacer.Replace(a)
	switch a {
	case "buy", "long", "open", "enter_long", "go_long", "open_long", "buy_long":
		return ActionBuy
	case "sell", "close_long", "exit_long", "flat_long", "take_profit_long", "close", "exit", "flat", "close_position":
		return ActionSell
	default:
		// wait/stay/neutral/hold 以及无法识别的动作都视为观望
		return ActionHold
	}
}
