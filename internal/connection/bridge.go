package connection

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// WalletOrigin 钱包来源分类，由认证服务适配器在发现钱包时确定
type WalletOrigin int

const (
	// WalletOriginOther 无法归类的钱包
	WalletOriginOther WalletOrigin = iota
	// WalletOriginEmbedded 认证服务自身托管的钱包
	WalletOriginEmbedded
	// WalletOriginInjected 浏览器注入式钱包
	WalletOriginInjected
	// WalletOriginWalletConnect WalletConnect 类远程钱包
	WalletOriginWalletConnect
)

// IsExternal 返回该钱包是否为用户自己的外部钱包
func (o WalletOrigin) IsExternal() bool {
	return o == WalletOriginInjected || o == WalletOriginWalletConnect
}

// String 实现 fmt.Stringer
func (o WalletOrigin) String() string {
	switch o {
	case WalletOriginEmbedded:
		return "embedded"
	case WalletOriginInjected:
		return "injected"
	case WalletOriginWalletConnect:
		return "wallet_connect"
	default:
		return "other"
	}
}

// Wallet 认证服务已知的一个钱包
type Wallet interface {
	Address() string
	Origin() WalletOrigin
	// Provider 获取钱包的 provider，尚未就绪时可以返回 nil
	Provider(ctx context.Context) (provider.Provider, error)
}

// WalletSource 提供认证服务当前已知的钱包列表，列表在登录后异步填充
type WalletSource interface {
	Wallets(ctx context.Context) ([]Wallet, error)
}

// HandleState 外部 provider 句柄的生命周期状态
type HandleState string

const (
	HandleUnset    HandleState = "unset"
	HandlePending  HandleState = "pending"
	HandleResolved HandleState = "resolved"
)

// BridgeOption Bridge 配置项
type BridgeOption func(*Bridge)

// WithSleep 替换轮询间隔的等待函数
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) BridgeOption {
	return func(b *Bridge) {
		b.sleep = sleep
	}
}

// WithPollObserver 设置每次轮询后的回调
func WithPollObserver(fn func(attempt int, found bool)) BridgeOption {
	return func(b *Bridge) {
		b.onPoll = fn
	}
}

// Bridge 解析并持有外部 provider 句柄
type Bridge struct {
	source   WalletSource
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	onPoll   func(attempt int, found bool)
	logger   *logrus.Logger

	mu     sync.Mutex
	handle provider.Provider
	state  HandleState
}

// NewBridge 创建 Bridge。source 为 nil 表示没有配置认证服务
func NewBridge(source WalletSource, attempts int, interval time.Duration, logger *logrus.Logger, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		source:   source,
		attempts: attempts,
		interval: interval,
		sleep:    sleepContext,
		onPoll:   func(int, bool) {},
		logger:   logger,
		state:    HandleUnset,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// sleepContext 等待 d 或 ctx 结束
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Resolve 轮询认证服务的钱包列表，返回第一个外部钱包的 provider。
// 每次失败后等待固定间隔，预算耗尽时返回 NO_PROVIDER_AVAILABLE。
// Resolve 不会改变当前句柄，调用方确认结果仍然有效后再调用 SetExternalProvider。
func (b *Bridge) Resolve(ctx context.Context) (provider.Provider, error) {
	if b.source == nil {
		return nil, noProviderAvailable(0)
	}

	b.setPending(true)
	defer b.setPending(false)

	ctx = apperrors.WithOperation(ctx, apperrors.OpResolveProvider)
	entry := apperrors.EntryFromContext(ctx, b.logger)

	for attempt := 1; attempt <= b.attempts; attempt++ {
		p := b.tryResolve(ctx, entry.WithField("attempt", attempt))
		b.onPoll(attempt, p != nil)
		if p != nil {
			entry.WithField("attempt", attempt).Info("External wallet provider resolved")
			return p, nil
		}

		if err := b.sleep(ctx, b.interval); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeTimeout, jsonrpc.CodeServerErrorStart+1,
				"External wallet provider resolution cancelled").WithContext("attempt", attempt)
		}
	}

	entry.WithField("attempts", b.attempts).Warn("No external wallet provider became available")
	return nil, noProviderAvailable(b.attempts)
}

// tryResolve 执行一次查找，找不到候选钱包或 provider 未就绪时返回 nil
func (b *Bridge) tryResolve(ctx context.Context, logger *logrus.Entry) provider.Provider {
	wallets, err := b.source.Wallets(ctx)
	if err != nil {
		logger.WithError(err).Debug("Failed to list wallets")
		return nil
	}

	wallet := SelectExternalWallet(wallets)
	if wallet == nil {
		logger.WithField("wallets", len(wallets)).Debug("No external wallet yet")
		return nil
	}

	p, err := wallet.Provider(ctx)
	if err != nil {
		logger.WithError(err).WithField("address", ShortAddress(wallet.Address())).Debug("External wallet provider not ready")
		return nil
	}
	return p
}

// SelectExternalWallet 按列表顺序返回第一个外部钱包
func SelectExternalWallet(wallets []Wallet) Wallet {
	for _, w := range wallets {
		if w != nil && w.Origin().IsExternal() {
			return w
		}
	}
	return nil
}

// SetExternalProvider 设置当前外部 provider 句柄
func (b *Bridge) SetExternalProvider(p provider.Provider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handle = p
	if p != nil {
		b.state = HandleResolved
	} else if b.state == HandleResolved {
		b.state = HandleUnset
	}
}

// Current 返回当前句柄，未设置时为 nil
func (b *Bridge) Current() provider.Provider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// State 返回句柄的生命周期状态
func (b *Bridge) State() HandleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Clear 清除句柄
func (b *Bridge) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handle = nil
	if b.state == HandleResolved {
		b.state = HandleUnset
	}
}

func (b *Bridge) setPending(pending bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case pending && b.state != HandleResolved:
		b.state = HandlePending
	case !pending && b.state == HandlePending:
		b.state = HandleUnset
	}
}

func noProviderAvailable(attempts int) error {
	return apperrors.New(apperrors.ErrorTypeNoProviderAvailable, jsonrpc.CodeDisconnected,
		"No external wallet provider available").WithContext("attempts", attempts)
}
