package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autotrader/internal/logger"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TradeRecordModel maps to 'trade_records' table.
type TradeRecordModel struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	LedgerKey  string  `gorm:"column:ledger_key;index:idx_ledger_key_id,priority:1"`
	Timestamp  string  `gorm:"column:timestamp"`
	Symbol     string  `gorm:"column:symbol"`
	Decision   string  `gorm:"column:decision"`
	Quantity   float64 `gorm:"column:quantity"`
	TakeProfit string  `gorm:"column:take_profit"`
	StopLoss   string  `gorm:"column:stop_loss"`
	Status     string  `gorm:"column:status;index"`
	Error      *string `gorm:"column:error"`
}

func (TradeRecordModel) TableName() string { return "trade_records" }

// ExecutionAuditModel maps to 'execution_audit' table.
type ExecutionAuditModel struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	TraceID   string         `gorm:"column:trace_id;index"`
	Symbol    string         `gorm:"column:symbol;index"`
	Side      string         `gorm:"column:side"`
	Executed  bool           `gorm:"column:executed"`
	Error     string         `gorm:"column:error"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedAt int64          `gorm:"column:created_at"`
}

func (ExecutionAuditModel) TableName() string { return "execution_audit" }

func (m TradeRecordModel) record() Record {
	return Record{
		Timestamp:  m.Timestamp,
		Symbol:     m.Symbol,
		Decision:   m.Decision,
		Quantity:   m.Quantity,
		TakeProfit: m.TakeProfit,
		StopLoss:   m.StopLoss,
		Status:     Status(m.Status),
		Error:      m.Error,
	}
}

// SQLiteStore 是台账的 SQLite 实现，同时承担执行审计。
type SQLiteStore struct {
	db *gorm.DB
}

var (
	_ Store   = (*SQLiteStore)(nil)
	_ Auditor = (*SQLiteStore)(nil)
)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewSQLiteStoreFromDB(db)
}

func NewSQLiteStoreFromDB(db *gorm.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db 不能为空")
	}
	if err := db.AutoMigrate(&TradeRecordModel{}, &ExecutionAuditModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, symbol string, limit int) []Record {
	records, err := loadTail(s.db.WithContext(ctx), ledgerKey(symbol), limit)
	if err != nil {
		logger.Warnf("ledger load failed symbol=%s: %v", symbol, err)
		return nil
	}
	return records
}

func (s *SQLiteStore) Append(ctx context.Context, symbol string, rec Record, retention int) ([]Record, error) {
	retention = normalizeRetention(retention)
	key := ledgerKey(symbol)
	rec = stamp(rec)
	var out []Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := TradeRecordModel{
			LedgerKey:  key,
			Timestamp:  rec.Timestamp,
			Symbol:     rec.Symbol,
			Decision:   rec.Decision,
			Quantity:   rec.Quantity,
			TakeProfit: rec.TakeProfit,
			StopLoss:   rec.StopLoss,
			Status:     string(rec.Status),
			Error:      rec.Error,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		keep := tx.Model(&TradeRecordModel{}).Select("id").
			Where("ledger_key = ?", key).Order("id DESC").Limit(retention)
		if err := tx.Where("ledger_key = ? AND id NOT IN (?)", key, keep).
			Delete(&TradeRecordModel{}).Error; err != nil {
			return err
		}
		var err error
		out, err = loadTail(tx, key, retention)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("append ledger failed: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CloseLastOpen(ctx context.Context, symbol string, retention int) error {
	key := ledgerKey(symbol)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records, err := loadTailRows(tx, key, normalizeRetention(retention))
		if err != nil {
			return err
		}
		for i := len(records) - 1; i >= 0; i-- {
			if records[i].Status != string(StatusOpen) {
				continue
			}
			return tx.Model(&TradeRecordModel{}).Where("id = ?", records[i].ID).
				Update("status", string(StatusClosed)).Error
		}
		return nil
	})
}

func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&TradeRecordModel{}).
		Distinct("ledger_key").Order("ledger_key").Pluck("ledger_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *SQLiteStore) RecordExecution(ctx context.Context, entry AuditEntry) error {
	row := ExecutionAuditModel{
		TraceID:   entry.TraceID,
		Symbol:    entry.Symbol,
		Side:      entry.Side,
		Executed:  entry.Executed,
		Error:     entry.Error,
		Payload:   datatypes.JSON(entry.Payload),
		CreatedAt: time.Now().UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// ListAudits 按时间倒序返回某币种的审计记录。
func (s *SQLiteStore) ListAudits(ctx context.Context, symbol string, limit int) ([]ExecutionAuditModel, error) {
	var rows []ExecutionAuditModel
	q := s.db.WithContext(ctx).Where("symbol = ?", symbol).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// loadTailRows 取最近 limit 行并按插入顺序返回；limit<=0 取全部。
func loadTailRows(db *gorm.DB, key string, limit int) ([]TradeRecordModel, error) {
	var rows []TradeRecordModel
	q := db.Where("ledger_key = ?", key).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func loadTail(db *gorm.DB, key string, limit int) ([]Record, error) {
	rows, err := loadTailRows(db, key, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}
