package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const telegramAPI = "https://api.telegram.org"

// Telegram 把执行结果推送到指定群/频道。
type Telegram struct {
	BotToken string
	ChatID   string
	client   *resty.Client
}

var _ TextNotifier = (*Telegram)(nil)

func NewTelegram(botToken, chatID string) *Telegram {
	return newTelegram(botToken, chatID, telegramAPI)
}

func newTelegram(botToken, chatID, baseURL string) *Telegram {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(15 * time.Second)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
	})
	return &Telegram{
		BotToken: strings.TrimSpace(botToken),
		ChatID:   strings.TrimSpace(chatID),
		client:   client,
	}
}

// SendText 发送文本消息（失败最多重试 2 次）。
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("Telegram 配置不完整")
	}
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id":    t.ChatID,
			"text":       text,
			"parse_mode": "Markdown",
		}).
		Post("/bot" + t.BotToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("telegram status=%d", resp.StatusCode())
	}
	return nil
}
