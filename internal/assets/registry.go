// Package assets 维护可交易币种白名单，文件变更后自动热加载。
package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"autotrader/internal/logger"
	"autotrader/internal/pkg/symbol"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const fileSchema = `{
  "type": "object",
  "properties": {
    "assets":  {"type": "array", "items": {"type": "string", "pattern": "^[A-Za-z0-9]{1,20}$"}},
    "blocked": {"type": "array", "items": {"type": "string", "pattern": "^[A-Za-z0-9]{1,20}$"}}
  },
  "additionalProperties": false
}`

// FileConfig 映射白名单文件。
type FileConfig struct {
	Assets  []string `yaml:"assets"`
	Blocked []string `yaml:"blocked"`
}

// Snapshot 公开的白名单快照。
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Assets   []string
	Blocked  []string
}

// ChangeListener 在 registry 重载时触发。
type ChangeListener func(Snapshot)

// Registry 管理白名单，实现 symbol.AssetSet。
type Registry struct {
	path   string
	v      *viper.Viper
	schema *jsonschema.Schema

	mu        sync.RWMutex
	snapshot  Snapshot
	allowed   map[string]struct{}
	blocked   map[string]struct{}
	listeners []ChangeListener
}

var _ symbol.AssetSet = (*Registry)(nil)

// NewRegistry 读取白名单文件并监听更新。
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("asset registry requires path")
	}
	schema, err := compileSchema(fileSchema)
	if err != nil {
		return nil, fmt.Errorf("compile asset schema failed: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read asset config failed: %w", err)
	}
	r := &Registry{path: path, v: v, schema: schema}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			// 保留上一版快照
			logger.Errorf("asset registry reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Contains 判断资产是否在白名单内（已被 blocked 的除外）。
func (r *Registry) Contains(asset string) bool {
	a := symbol.Clean(asset)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.blocked[a]; ok {
		return false
	}
	_, ok := r.allowed[a]
	return ok
}

// Excludes 判断资产是否被显式屏蔽，屏蔽优先于短代码启发式。
func (r *Registry) Excludes(asset string) bool {
	a := symbol.Clean(asset)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.blocked[a]
	return ok
}

// Snapshot 返回当前白名单。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// OnChange 注册重载回调。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) reload() error {
	cfg, err := r.readFile()
	if err != nil {
		return err
	}
	list := normalizeList(cfg.Assets)
	if len(list) == 0 {
		list = normalizeList(symbol.DefaultAssets)
	}
	blocked := normalizeList(cfg.Blocked)

	r.mu.Lock()
	r.allowed = toSet(list)
	r.blocked = toSet(blocked)
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Assets:   list,
		Blocked:  blocked,
	}
	r.mu.Unlock()
	logger.Infof("Asset registry loaded %d assets (%d blocked) from %s", len(list), len(blocked), filepath.Base(r.path))
	return nil
}

func (r *Registry) readFile() (FileConfig, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read asset config failed: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return FileConfig{}, fmt.Errorf("parse asset config failed: %w", err)
	}
	if doc != nil {
		if err := r.schema.Validate(toJSONValue(doc)); err != nil {
			return FileConfig{}, fmt.Errorf("asset config schema: %w", err)
		}
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("parse asset config failed: %w", err)
	}
	return cfg, nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer safeRecover("asset listener")
			cb(snap)
		}(fn)
	}
}

func normalizeList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = symbol.Clean(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, a := range list {
		set[a] = struct{}{}
	}
	return set
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := src
	dst.Assets = append([]string(nil), src.Assets...)
	dst.Blocked = append([]string(nil), src.Blocked...)
	return dst
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}

func compileSchema(raw string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("assets.json", strings.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("assets.json")
}

// toJSONValue 把 yaml 解码结果转成 encoding/json 的值类型，供 schema 校验。
func toJSONValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
