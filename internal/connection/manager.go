package connection

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// Manager 统一的连接入口，按当前连接方式分派。
// 声明式连接组件自行管理状态，Manager 只缓存其他方式的账户。
type Manager struct {
	store    *SelectionStore
	bridge   *Bridge
	injected provider.Provider
	logger   *logrus.Logger

	mu         sync.Mutex
	account    string
	connecting bool
	generation uint64

	unsubscribe func()
}

// NewManager 创建 Manager。injected 为 nil 表示环境中没有注入式 provider
func NewManager(store *SelectionStore, bridge *Bridge, injected provider.Provider, logger *logrus.Logger) *Manager {
	m := &Manager{
		store:    store,
		bridge:   bridge,
		injected: injected,
		logger:   logger,
	}
	// 先于其他监听器注册，保证监听器看到的是已清空的缓存
	m.unsubscribe = store.Subscribe(m.onMethodChange)
	return m
}

// Close 取消对连接方式变更的监听
func (m *Manager) Close() {
	m.unsubscribe()
}

func (m *Manager) onMethodChange(change MethodChange) {
	if !change.Changed() {
		return
	}
	m.invalidate()
	m.logger.WithFields(logrus.Fields{
		"previous": change.Previous,
		"current":  change.Current,
	}).Debug("Cleared cached connection state")
}

// invalidate 清空账户和外部句柄，并使进行中的连接结果失效
func (m *Manager) invalidate() {
	m.mu.Lock()
	m.generation++
	m.account = ""
	m.connecting = false
	m.mu.Unlock()
	m.bridge.Clear()
}

// Registry 返回连接方式列表
func (m *Manager) Registry() *Registry {
	return m.store.registry
}

// ListMethods 返回支持的连接方式
func (m *Manager) ListMethods() []Descriptor {
	return m.store.registry.ListMethods()
}

// GetCurrentMethod 返回当前连接方式
func (m *Manager) GetCurrentMethod() Method {
	return m.store.GetCurrentMethod()
}

// LoadStoredMethod 重新读取已保存的连接方式
func (m *Manager) LoadStoredMethod() Method {
	return m.store.LoadStoredMethod()
}

// SetCurrentMethod 切换连接方式
func (m *Manager) SetCurrentMethod(method Method) error {
	return m.store.SetCurrentMethod(method)
}

// SetExternalProvider 设置外部 provider 句柄
func (m *Manager) SetExternalProvider(p provider.Provider) {
	m.bridge.SetExternalProvider(p)
}

// Generation 返回当前代数，切换连接方式或断开连接时递增
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// ConnectWithMethod 使用指定方式请求账户并缓存主账户地址。
// 声明式方式直接返回空地址，调用方应使用连接组件自己的连接流程。
// method 与当前方式不同时会先切换。
func (m *Manager) ConnectWithMethod(ctx context.Context, method Method) (string, error) {
	if !m.store.registry.IsKnown(method) {
		return "", invalidMethod(string(method))
	}
	if method != m.store.GetCurrentMethod() {
		if err := m.store.SetCurrentMethod(method); err != nil {
			return "", err
		}
	}
	if method.IsDeclarative() {
		return "", nil
	}
	return m.connect(ctx, method, m.Generation())
}

// connect 在代数 gen 下连接 method，不会切换当前方式。
// 当前方式已经不是 method 或代数已变化时返回 CONNECTION_SUPERSEDED
func (m *Manager) connect(ctx context.Context, method Method, gen uint64) (string, error) {
	var p provider.Provider
	switch method {
	case MethodPrivy:
		p = m.bridge.Current()
		if p == nil {
			return "", apperrors.New(apperrors.ErrorTypeProviderNotReady, jsonrpc.CodeUnauthorized,
				"Embedded provider not ready").WithContext("method", string(method))
		}
	case MethodInjected:
		p = m.injected
		if p == nil {
			return "", apperrors.New(apperrors.ErrorTypeNoInjectedProvider, jsonrpc.CodeDisconnected,
				"No injected wallet provider found").WithContext("method", string(method))
		}
	}

	m.mu.Lock()
	if gen != m.generation || m.store.GetCurrentMethod() != method {
		m.mu.Unlock()
		return "", superseded(method)
	}
	m.connecting = true
	m.mu.Unlock()

	accounts, err := provider.RequestAccounts(ctx, p)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		return "", superseded(method)
	}
	m.connecting = false

	if err != nil {
		return "", apperrors.NewConverter().FromProvider(err).WithContext("method", string(method))
	}
	if len(accounts) == 0 {
		return "", apperrors.New(apperrors.ErrorTypeUnderlyingProvider, jsonrpc.CodeUnauthorized,
			"Wallet returned no accounts").WithContext("method", string(method))
	}

	m.account = accounts[0].String()
	m.logger.WithFields(logrus.Fields{
		"method":  method,
		"address": ShortAddress(m.account),
	}).Info("Wallet connected")
	return m.account, nil
}

func superseded(method Method) error {
	return apperrors.New(apperrors.ErrorTypeSuperseded, jsonrpc.CodeUnauthorized,
		"Connection attempt superseded").WithContext("method", string(method))
}

// Disconnect 清除当前方式的账户和外部句柄。声明式方式不做任何操作，可重复调用
func (m *Manager) Disconnect() {
	if m.store.GetCurrentMethod().IsDeclarative() {
		return
	}
	m.mu.Lock()
	wasConnected := m.account != ""
	m.mu.Unlock()

	m.invalidate()
	if wasConnected {
		m.logger.WithField("method", m.store.GetCurrentMethod()).Info("Wallet disconnected")
	}
}

// GetConnectedAccount 返回当前非声明式方式缓存的账户，未连接时为空字符串
func (m *Manager) GetConnectedAccount() string {
	if m.store.GetCurrentMethod().IsDeclarative() {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account
}

// State 返回非声明式方式的连接状态
func (m *Manager) State() State {
	method := m.store.GetCurrentMethod()
	if method.IsDeclarative() {
		return newState(method, "", false)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return newState(method, m.account, m.connecting)
}

// ActiveProvider 返回当前已连接方式使用的 provider，未连接时为 nil
func (m *Manager) ActiveProvider() provider.Provider {
	method := m.store.GetCurrentMethod()
	if m.GetConnectedAccount() == "" {
		return nil
	}
	switch method {
	case MethodPrivy:
		return m.bridge.Current()
	case MethodInjected:
		return m.injected
	default:
		return nil
	}
}
