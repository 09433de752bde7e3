// Package config 基于 viper 加载类型化配置，并在文件变更时热更新。
//
// 读取总是返回深拷贝，调用方可以随意修改；变更回调在去抖之后、
// 且新旧配置确实不同时才会触发。
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const defaultDebounce = 100 * time.Millisecond

// Config 配置管理器
type Config[T any] struct {
	v        *viper.Viper
	path     string
	value    *T
	mu       sync.RWMutex
	watchers []func(old, new T)

	watch    bool
	debounce time.Duration
	logger   *slog.Logger
}

// Option 配置选项
type Option[T any] func(*Config[T])

// WithDefaults 设置默认值，键使用点号分隔，如 "providers.openai.base_url"
func WithDefaults[T any](defaults map[string]any) Option[T] {
	return func(c *Config[T]) {
		for k, v := range defaults {
			c.v.SetDefault(k, v)
		}
	}
}

// WithEnv 绑定环境变量，"a.b" 对应 PREFIX_A_B
func WithEnv[T any](prefix string) Option[T] {
	return func(c *Config[T]) {
		c.v.SetEnvPrefix(prefix)
		c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		c.v.AutomaticEnv()
	}
}

// WithoutWatch 关闭文件监控，配置只在 Load 时读取一次
func WithoutWatch[T any]() Option[T] {
	return func(c *Config[T]) { c.watch = false }
}

// WithDebounce 设置文件变更的去抖时间
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *Config[T]) { c.debounce = d }
}

// WithLogger 记录热更新失败和回调 panic
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Config[T]) { c.logger = l }
}

// Load 加载配置文件并自动监控变更
func Load[T any](path string, opts ...Option[T]) (*Config[T], error) {
	v := viper.New()
	v.SetConfigFile(path)

	c := &Config[T]{
		v:        v,
		path:     path,
		watch:    true,
		debounce: defaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	val, err := c.read()
	if err != nil {
		return nil, err
	}
	c.value = &val

	if c.watch {
		c.startWatch()
	}
	return c, nil
}

// Path 返回配置文件路径
func (c *Config[T]) Path() string { return c.path }

// Get 获取当前配置（并发安全，返回深拷贝）
func (c *Config[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepCopy(*c.value)
}

// OnChange 注册配置变更回调
func (c *Config[T]) OnChange(callback func(old, new T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, callback)
}

// Reload 立即重新读取配置文件，配置有变化时触发回调
func (c *Config[T]) Reload() error {
	old := c.Get()

	next, watchers, err := c.reload()
	if err != nil {
		return err
	}
	if !Changed(old, next) {
		return nil
	}

	for _, cb := range watchers {
		c.notify(cb, old, next)
	}
	return nil
}

// Changed 比较两个值是否不同
func Changed[T any](old, new T) bool {
	return !reflect.DeepEqual(old, new)
}

// deepCopy 通过 JSON 序列化实现深拷贝
func deepCopy[T any](src T) T {
	var dst T
	data, _ := json.Marshal(src)
	_ = json.Unmarshal(data, &dst)
	return dst
}

func (c *Config[T]) read() (T, error) {
	var val T
	if err := c.v.ReadInConfig(); err != nil {
		return val, fmt.Errorf("config: read %s: %w", c.path, err)
	}
	if err := c.v.Unmarshal(&val); err != nil {
		return val, fmt.Errorf("config: decode %s: %w", c.path, err)
	}
	return val, nil
}

func (c *Config[T]) startWatch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	c.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		defer debounceMu.Unlock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(c.debounce, func() {
			if err := c.Reload(); err != nil {
				c.logger.Warn("config reload failed", "path", c.path, "err", err)
			}
		})
	})

	c.v.WatchConfig()
}

// reload 重新加载配置，返回新配置和回调列表
func (c *Config[T]) reload() (T, []func(old, new T), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, err := c.read()
	if err != nil {
		var zero T
		return zero, nil, err
	}
	c.value = &val

	watchers := make([]func(old, new T), len(c.watchers))
	copy(watchers, c.watchers)

	return deepCopy(val), watchers, nil
}

func (c *Config[T]) notify(cb func(old, new T), old, next T) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("config watcher panicked", "path", c.path, "panic", r)
		}
	}()
	cb(deepCopy(old), deepCopy(next))
}
