package connection

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// DeclarativeBackend 自行管理连接状态的连接组件
type DeclarativeBackend interface {
	// Connect 执行组件自己的连接流程并返回地址
	Connect(ctx context.Context) (string, error)
	// Disconnect 断开组件会话
	Disconnect(ctx context.Context) error
	// Status 返回组件当前的会话状态
	Status(ctx context.Context) (address string, connected bool, err error)
	// Provider 返回组件会话使用的 provider
	Provider() provider.Provider
}

// AuthBackend 嵌入式认证服务
type AuthBackend interface {
	Ready(ctx context.Context) bool
	Authenticated() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Observer 连接生命周期观察者
type Observer interface {
	ConnectAttempt(method Method, err error)
	Disconnected(method Method)
}

type nopObserver struct{}

func (nopObserver) ConnectAttempt(Method, error) {}
func (nopObserver) Disconnected(Method)          {}

// ControllerOption Controller 配置项
type ControllerOption func(*Controller)

// WithObserver 设置生命周期观察者
func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller 按当前连接方式编排连接、断开和状态对账
type Controller struct {
	manager        *Manager
	bridge         *Bridge
	kit            DeclarativeBackend
	auth           AuthBackend
	statusInterval time.Duration
	observer       Observer
	logger         *logrus.Logger
}

// NewController 创建 Controller。kit 或 auth 为 nil 表示对应后端未配置
func NewController(manager *Manager, kit DeclarativeBackend, auth AuthBackend, statusInterval time.Duration, logger *logrus.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		manager:        manager,
		bridge:         manager.bridge,
		kit:            kit,
		auth:           auth,
		statusInterval: statusInterval,
		observer:       nopObserver{},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Manager 返回底层 Manager
func (c *Controller) Manager() *Manager {
	return c.manager
}

// Connect 使用当前连接方式建立连接，返回连接后的状态
func (c *Controller) Connect(ctx context.Context) (State, error) {
	ctx = apperrors.WithOperation(ctx, apperrors.OpConnect)
	method := c.manager.GetCurrentMethod()
	start := time.Now()
	entry := apperrors.EntryFromContext(ctx, c.logger).WithField("method", method)

	var err error
	switch method {
	case MethodRainbowKit:
		err = c.connectKit(ctx)
	case MethodPrivy:
		err = c.connectEmbedded(ctx)
	default:
		_, err = c.manager.ConnectWithMethod(ctx, method)
	}

	c.observer.ConnectAttempt(method, err)
	apperrors.LogOperation(entry, apperrors.OpConnect, start, err)
	return c.State(ctx), err
}

func (c *Controller) connectKit(ctx context.Context) error {
	if c.kit == nil {
		return apperrors.New(apperrors.ErrorTypeNoProviderAvailable, jsonrpc.CodeDisconnected,
			"Wallet connector kit is not configured")
	}
	if _, err := c.kit.Connect(ctx); err != nil {
		return apperrors.NewConverter().FromProvider(err)
	}
	return nil
}

// connectEmbedded 登录认证服务，等待外部钱包 provider 后连接
func (c *Controller) connectEmbedded(ctx context.Context) error {
	if c.auth == nil || !c.auth.Ready(ctx) {
		return apperrors.New(apperrors.ErrorTypeProviderNotReady, jsonrpc.CodeUnauthorized,
			"Embedded auth provider is not ready")
	}

	gen := c.manager.Generation()

	if !c.auth.Authenticated() {
		if err := c.auth.Login(ctx); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeAuthFailed, jsonrpc.CodeUnauthorized, "Embedded auth login failed")
		}
	}

	// 之前失败的连接已解析出句柄时直接复用
	if c.bridge.Current() == nil {
		p, err := c.bridge.Resolve(ctx)
		if err != nil {
			return err
		}
		if c.manager.Generation() != gen {
			return superseded(MethodPrivy)
		}
		c.manager.SetExternalProvider(p)
	}

	// 不能切换回 privy，轮询期间用户可能已改用其他方式
	_, err := c.manager.connect(ctx, MethodPrivy, gen)
	return err
}

// Disconnect 断开当前连接方式
func (c *Controller) Disconnect(ctx context.Context) error {
	ctx = apperrors.WithOperation(ctx, apperrors.OpDisconnect)
	method := c.manager.GetCurrentMethod()
	entry := apperrors.EntryFromContext(ctx, c.logger).WithField("method", method)

	switch method {
	case MethodRainbowKit:
		if c.kit != nil {
			if err := c.kit.Disconnect(ctx); err != nil {
				return apperrors.NewConverter().FromProvider(err)
			}
		}
	case MethodPrivy:
		c.manager.Disconnect()
		if c.auth != nil {
			if err := c.auth.Logout(ctx); err != nil {
				entry.WithFields(apperrors.ErrorFields(err)).Warn("Embedded auth logout failed")
			}
		}
	default:
		c.manager.Disconnect()
	}

	c.observer.Disconnected(method)
	return nil
}

// SetMethod 切换连接方式
func (c *Controller) SetMethod(method Method) error {
	return c.manager.SetCurrentMethod(method)
}

// Subscribe 监听连接方式变更
func (c *Controller) Subscribe(fn Listener) func() {
	return c.manager.store.Subscribe(fn)
}

// State 计算当前连接状态。声明式方式读取组件自身状态
func (c *Controller) State(ctx context.Context) State {
	method := c.manager.GetCurrentMethod()
	if !method.IsDeclarative() {
		return c.manager.State()
	}
	if c.kit == nil {
		return newState(method, "", false)
	}
	address, connected, err := c.kit.Status(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Failed to read connector kit status")
		return newState(method, "", false)
	}
	if !connected {
		address = ""
	}
	return newState(method, address, false)
}

// ActiveProvider 返回当前连接使用的 provider，未连接时为 nil
func (c *Controller) ActiveProvider(ctx context.Context) provider.Provider {
	method := c.manager.GetCurrentMethod()
	if !method.IsDeclarative() {
		return c.manager.ActiveProvider()
	}
	if c.kit == nil {
		return nil
	}
	if _, connected, err := c.kit.Status(ctx); err != nil || !connected {
		return nil
	}
	return c.kit.Provider()
}

// Watch 在连接方式变更时和每个对账周期重新计算状态，只在状态变化时调用 fn。
// 首次调用立即发生，ctx 结束后返回。
func (c *Controller) Watch(ctx context.Context, fn func(State)) {
	changed := make(chan struct{}, 1)
	unsubscribe := c.Subscribe(func(MethodChange) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(c.statusInterval)
	defer ticker.Stop()

	last := c.State(ctx)
	fn(last)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-changed:
		}
		if current := c.State(ctx); current != last {
			last = current
			fn(current)
		}
	}
}
