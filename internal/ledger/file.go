package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"autotrader/internal/logger"
	"autotrader/internal/pkg/symbol"

	"github.com/tidwall/gjson"
)

const logFileName = "trade_log.json"

// FileStore 把台账保存为 <results_dir>/trades/<SYMBOL>/trade_log.json。
type FileStore struct {
	root  string
	locks *SymbolLocks
}

var _ Store = (*FileStore)(nil)

func NewFileStore(resultsDir string) *FileStore {
	if resultsDir == "" {
		resultsDir = "./results"
	}
	return &FileStore{
		root:  filepath.Join(resultsDir, "trades"),
		locks: NewSymbolLocks(),
	}
}

// dir 返回 trades/<SYMBOL>；无法安全作为目录名的代码直接拒绝。
func (s *FileStore) dir(sym string) (string, error) {
	if err := symbol.Validate(sym); err != nil {
		return "", fmt.Errorf("ledger key %q: %w", sym, err)
	}
	return filepath.Join(s.root, ledgerKey(sym)), nil
}

func (s *FileStore) path(sym string) (string, error) {
	dir, err := s.dir(sym)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

func (s *FileStore) Load(_ context.Context, symbol string, limit int) []Record {
	p, err := s.path(symbol)
	if err != nil {
		logger.Warnf("ledger load skipped: %v", err)
		return nil
	}
	unlock := s.locks.Lock(p)
	defer unlock()
	return tail(s.read(p), limit)
}

func (s *FileStore) Append(_ context.Context, symbol string, rec Record, retention int) ([]Record, error) {
	retention = normalizeRetention(retention)
	dir, err := s.dir(symbol)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir failed: %w", err)
	}
	p := filepath.Join(dir, logFileName)
	unlock := s.locks.Lock(p)
	defer unlock()

	records := tail(s.read(p), retention)
	records = append(records, stamp(rec))
	records = tail(records, retention)
	if err := writeAtomic(p, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FileStore) CloseLastOpen(_ context.Context, symbol string, retention int) error {
	p, err := s.path(symbol)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(p)
	defer unlock()

	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	records := s.read(p)
	if !closeNewestOpen(records) {
		return nil
	}
	return writeAtomic(p, tail(records, normalizeRetention(retention)))
}

func (s *FileStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list ledger dir failed: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// read 读取台账；不存在、非数组或解析失败都按空台账处理。
func (s *FileStore) read(path string) []Record {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("ledger read failed path=%s: %v", path, err)
		}
		return nil
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsArray() {
		logger.Warnf("ledger corrupt, treating as empty path=%s", path)
		return nil
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Warnf("ledger decode failed, treating as empty path=%s: %v", path, err)
		return nil
	}
	return records
}

// writeAtomic 先写临时文件并 fsync，再 rename 覆盖。
func writeAtomic(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger failed: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+logFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp ledger failed: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp ledger failed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp ledger failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp ledger failed: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace ledger failed: %w", err)
	}
	return nil
}
