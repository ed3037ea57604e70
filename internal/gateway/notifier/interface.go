package notifier

import "context"

// TextNotifier 是最小的文本通知接口，执行层只依赖它。
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}
