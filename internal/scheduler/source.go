package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"autotrader/internal/pkg/symbol"
)

// ErrNoDecision 表示本轮没有新的决策文本。
var ErrNoDecision = errors.New("no new decision")

// Source 为某个币种提供最新的决策文本。
type Source interface {
	Next(ctx context.Context, sym string) (string, error)
}

// DirSource 读取 <dir>/<SYMBOL>.txt，文件自上次读取后有变化才返回内容。
type DirSource struct {
	dir string

	mu   sync.Mutex
	seen map[string]fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir, seen: make(map[string]fileStamp)}
}

func (s *DirSource) Path(sym string) string {
	return filepath.Join(s.dir, symbol.Clean(sym)+".txt")
}

func (s *DirSource) Next(ctx context.Context, sym string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.Path(sym)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoDecision
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}

	s.mu.Lock()
	prev, ok := s.seen[path]
	s.mu.Unlock()
	if ok && prev == stamp {
		return "", ErrNoDecision
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	s.mu.Lock()
	s.seen[path] = stamp
	s.mu.Unlock()
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", ErrNoDecision
	}
	return text, nil
}
