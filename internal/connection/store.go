package connection

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/storage"
)

// StorageKey 保存当前连接方式的存储键
const StorageKey = "connectionMethod"

// MethodChange 连接方式变更通知
type MethodChange struct {
	Previous Method `json:"previous"`
	Current  Method `json:"current"`
}

// Changed 返回连接方式是否真的发生了变化
func (c MethodChange) Changed() bool {
	return c.Previous != c.Current
}

// Listener 连接方式变更监听器
type Listener func(change MethodChange)

type listenerEntry struct {
	id int
	fn Listener
}

// SelectionStore 持久化当前连接方式。
// 存储不可用时退回内存存储，读写失败只记录日志，不向调用方返回错误。
type SelectionStore struct {
	mu        sync.Mutex
	registry  *Registry
	storage   storage.KVStorage
	logger    *logrus.Logger
	current   Method
	listeners []listenerEntry
	nextID    int
	fallback  Method
}

// StoreOption SelectionStore 配置项
type StoreOption func(*SelectionStore)

// WithDefaultMethod 设置没有已保存值时使用的连接方式，未知方式被忽略
func WithDefaultMethod(m Method) StoreOption {
	return func(s *SelectionStore) {
		if s.registry.IsKnown(m) {
			s.fallback = m
		}
	}
}

// NewSelectionStore 创建存储并读取一次已保存的连接方式
func NewSelectionStore(registry *Registry, kv storage.KVStorage, logger *logrus.Logger, opts ...StoreOption) *SelectionStore {
	if kv == nil {
		kv = storage.NewMemoryStorage()
	}
	s := &SelectionStore{
		registry: registry,
		storage:  kv,
		logger:   logger,
		fallback: DefaultMethod,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.readStored()
	return s
}

// readStored 读取存储中的连接方式，缺失、无效或读取失败时返回默认值
func (s *SelectionStore) readStored() Method {
	value, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read stored connection method, using default")
		return s.fallback
	}
	if !ok {
		return s.fallback
	}
	m := Method(value)
	if !s.registry.IsKnown(m) {
		s.logger.WithField("stored", value).Warn("Ignoring unknown stored connection method")
		return s.fallback
	}
	return m
}

// LoadStoredMethod 重新读取存储中的连接方式并更新当前值
func (s *SelectionStore) LoadStoredMethod() Method {
	s.mu.Lock()
	prev := s.current
	s.current = s.readStored()
	change := MethodChange{Previous: prev, Current: s.current}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if change.Changed() {
		notify(listeners, change)
	}
	return change.Current
}

// GetCurrentMethod 返回内存中的当前连接方式
func (s *SelectionStore) GetCurrentMethod() Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrentMethod 校验并保存连接方式，然后通知所有监听器。
// 未知标识返回 INVALID_METHOD 且不修改当前值。
func (s *SelectionStore) SetCurrentMethod(m Method) error {
	if !s.registry.IsKnown(m) {
		return invalidMethod(string(m))
	}

	s.mu.Lock()
	if err := s.storage.Set(StorageKey, string(m)); err != nil {
		s.logger.WithError(err).WithField("method", m).
			Warn("Failed to persist connection method, continuing with in-memory storage")
		if err := s.storage.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close persistent storage")
		}
		s.storage = storage.NewMemoryStorage()
		_ = s.storage.Set(StorageKey, string(m))
	}
	change := MethodChange{Previous: s.current, Current: m}
	s.current = m
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"previous": change.Previous,
		"current":  change.Current,
	}).Info("Connection method changed")

	notify(listeners, change)
	return nil
}

// Subscribe 注册监听器，按注册顺序调用。返回的函数用于取消注册
func (s *SelectionStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *SelectionStore) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l.fn)
	}
	return out
}

func notify(listeners []Listener, change MethodChange) {
	for _, fn := range listeners {
		fn(change)
	}
}
