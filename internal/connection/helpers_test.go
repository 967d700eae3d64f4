package connection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
	"github.com/mowind/walletrpc-go/internal/storage"
)

const (
	testAddress        = "0x9b2055d370f73ec7d8a03e965129118dc8f5bf83"
	testAddressChecked = "0x9B2055d370F73eC7d8a03E965129118dC8F5bf83"
	otherAddress       = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	otherAddressCheck  = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
)

var allAvailable = Environment{KitAvailable: true, EmbeddedAvailable: true, InjectedAvailable: true}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// walletProvider 返回固定账户的 provider，并记录调用次数
func walletProvider(address string) (provider.Provider, *int) {
	calls := new(int)
	var mu sync.Mutex
	p := provider.Func(func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
		mu.Lock()
		*calls++
		mu.Unlock()
		switch method {
		case provider.MethodRequestAccounts, provider.MethodAccounts:
			return json.Marshal([]string{address})
		case provider.MethodChainID:
			return json.RawMessage(`"0x2eb"`), nil
		default:
			return nil, jsonrpc.MethodNotFoundError
		}
	})
	return p, calls
}

// rejectingProvider 模拟用户拒绝授权
func rejectingProvider() provider.Provider {
	return provider.Func(func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
		return nil, jsonrpc.NewCustomError(jsonrpc.CodeUserRejected, "User rejected the request.", nil)
	})
}

// failingStorage 所有读写都失败的存储，记录 Close 次数
type failingStorage struct {
	closes   int
	closeErr error
}

var errStorageUnavailable = errors.New("storage unavailable")

func (*failingStorage) Get(string) (string, bool, error) { return "", false, errStorageUnavailable }
func (*failingStorage) Set(string, string) error         { return errStorageUnavailable }
func (*failingStorage) Remove(string) error              { return errStorageUnavailable }
func (s *failingStorage) Close() error {
	s.closes++
	return s.closeErr
}

// fakeWallet 测试用钱包
type fakeWallet struct {
	address  string
	origin   WalletOrigin
	provider provider.Provider
	err      error
}

func (w *fakeWallet) Address() string      { return w.address }
func (w *fakeWallet) Origin() WalletOrigin { return w.origin }
func (w *fakeWallet) Provider(ctx context.Context) (provider.Provider, error) {
	return w.provider, w.err
}

// fakeSource 在第 readyAt 次查询时才返回外部钱包
type fakeSource struct {
	mu       sync.Mutex
	calls    int
	readyAt  int
	embedded Wallet
	external Wallet
}

func (s *fakeSource) Wallets(ctx context.Context) ([]Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	wallets := []Wallet{}
	if s.embedded != nil {
		wallets = append(wallets, s.embedded)
	}
	if s.readyAt > 0 && s.calls >= s.readyAt && s.external != nil {
		wallets = append(wallets, s.external)
	}
	return wallets, nil
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeClock 记录等待的总时长，不真正睡眠
type fakeClock struct {
	mu     sync.Mutex
	sleeps int
	total  time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps++
	c.total += d
	c.mu.Unlock()
	return nil
}

// fakeKit 测试用连接组件
type fakeKit struct {
	mu        sync.Mutex
	address   string
	connected bool
	provider  provider.Provider
	statusErr error
}

func (k *fakeKit) Connect(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.connected = true
	return k.address, nil
}

func (k *fakeKit) Disconnect(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.connected = false
	return nil
}

func (k *fakeKit) Status(ctx context.Context) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.statusErr != nil {
		return "", false, k.statusErr
	}
	return k.address, k.connected, nil
}

func (k *fakeKit) Provider() provider.Provider { return k.provider }

// fakeAuth 测试用认证服务
type fakeAuth struct {
	mu            sync.Mutex
	ready         bool
	authenticated bool
	logins        int
	logouts       int
	loginErr      error
}

func (a *fakeAuth) Ready(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

func (a *fakeAuth) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

func (a *fakeAuth) Login(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	if a.loginErr != nil {
		return a.loginErr
	}
	a.authenticated = true
	return nil
}

func (a *fakeAuth) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts++
	a.authenticated = false
	return nil
}

// fixture 组装完整的连接对象图
type fixture struct {
	kv         storage.KVStorage
	registry   *Registry
	store      *SelectionStore
	bridge     *Bridge
	manager    *Manager
	controller *Controller
	clock      *fakeClock
	source     *fakeSource
	kit        *fakeKit
	auth       *fakeAuth
	injected   provider.Provider
}

func newFixture(kv storage.KVStorage) *fixture {
	if kv == nil {
		kv = storage.NewMemoryStorage()
	}
	logger := testLogger()
	external, _ := walletProvider(otherAddress)
	injected, _ := walletProvider(testAddress)

	f := &fixture{
		kv:       kv,
		registry: NewRegistry(allAvailable),
		clock:    &fakeClock{},
		source: &fakeSource{
			readyAt:  1,
			embedded: &fakeWallet{address: testAddress, origin: WalletOriginEmbedded},
			external: &fakeWallet{address: otherAddress, origin: WalletOriginInjected, provider: external},
		},
		kit:      &fakeKit{address: testAddressChecked},
		auth:     &fakeAuth{ready: true},
		injected: injected,
	}
	f.store = NewSelectionStore(f.registry, kv, logger)
	f.bridge = NewBridge(f.source, 15, 500*time.Millisecond, logger, WithSleep(f.clock.Sleep))
	f.manager = NewManager(f.store, f.bridge, injected, logger)
	f.controller = NewController(f.manager, f.kit, f.auth, 10*time.Millisecond, logger)
	return f
}
