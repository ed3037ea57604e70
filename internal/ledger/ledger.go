// Package ledger 持久化每个币种的交易台账：按时间顺序追加、按保留条数截断，
// 并负责把最近一条 open 记录翻转为 closed。
package ledger

import (
	"context"
	"strings"
	"time"
)

const (
	DefaultRetention = 20
	TimestampLayout  = "2006-01-02T15:04:05.000000"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusSkipped Status = "skipped"
	StatusHold    Status = "hold"
)

// Record 是台账中的一条记录，字段与 trade_log.json 保持一致。
type Record struct {
	Timestamp  string  `json:"timestamp"`
	Symbol     string  `json:"symbol"`
	Decision   string  `json:"decision"`
	Quantity   float64 `json:"quantity"`
	TakeProfit string  `json:"take_profit"`
	StopLoss   string  `json:"stop_loss"`
	Status     Status  `json:"status"`
	Error      *string `json:"error"`
}

// Time 解析记录时间戳，兼容带时区与不带时区两种写法。
func (r Record) Time() (time.Time, error) {
	ts := strings.TrimSpace(r.Timestamp)
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", ts, time.UTC)
}

// ErrorText 返回错误文本，没有错误时为空串。
func (r Record) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// ErrorPtr 把空串转为 nil，便于写入 JSON null。
func ErrorPtr(msg string) *string {
	if msg == "" {
		return nil
	}
	return &msg
}

// Store 是台账存储。Load 在文件缺失或损坏时返回空切片，不返回错误。
type Store interface {
	Load(ctx context.Context, symbol string, limit int) []Record
	Append(ctx context.Context, symbol string, rec Record, retention int) ([]Record, error)
	CloseLastOpen(ctx context.Context, symbol string, retention int) error
	ListSymbols(ctx context.Context) ([]string, error)
}

// AuditEntry 对应一次执行的审计行，Payload 为完整执行结果 JSON。
type AuditEntry struct {
	TraceID  string
	Symbol   string
	Side     string
	Executed bool
	Error    string
	Payload  []byte
}

// Auditor 记录执行审计，失败由调用方当作 best-effort 处理。
type Auditor interface {
	RecordExecution(ctx context.Context, entry AuditEntry) error
}

var timeNow = time.Now

func stamp(rec Record) Record {
	rec.Timestamp = timeNow().UTC().Format(TimestampLayout)
	return rec
}

func normalizeRetention(retention int) int {
	if retention <= 0 {
		return DefaultRetention
	}
	return retention
}

// tail 返回最后 n 条；n<=0 返回全部。
func tail(records []Record, n int) []Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// LastOpen 返回最近一条 open 记录。
func LastOpen(records []Record) (Record, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Status == StatusOpen {
			return records[i], true
		}
	}
	return Record{}, false
}

// closeNewestOpen 原地把最后一条 open 改为 closed，返回是否有改动。
func closeNewestOpen(records []Record) bool {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Status == StatusOpen {
			records[i].Status = StatusClosed
			return true
		}
	}
	return false
}

func ledgerKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
