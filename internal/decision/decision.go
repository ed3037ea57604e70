package decision

// Decision 是一段决策文本解析后的结果。
type Decision struct {
	Action  Action  `json:"action"`
	Targets Targets `json:"targets"`
}

// Parse 同时提取动作与止盈止损。
func Parse(text string) Decision {
	return Decision{
		Action:  ParseAction(text),
		Targets: ExtractTargets(text),
	}
}
