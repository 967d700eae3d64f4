// Package connectorkit 实现自行管理会话的声明式连接组件。
// 组件持有自己的钱包 provider，连接、断开和状态都由组件决定，
// 连接管理器只读取它的状态。
package connectorkit

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/umbracle/ethgo"

	"github.com/mowind/walletrpc-go/internal/connection"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// Kit 声明式连接组件
type Kit struct {
	mu       sync.Mutex
	provider provider.Provider
	logger   *logrus.Logger
	address  ethgo.Address
	session  bool
}

// New 创建连接组件
func New(p provider.Provider, logger *logrus.Logger) *Kit {
	return &Kit{
		provider: p,
		logger:   logger,
	}
}

// Connect 请求钱包授权并建立会话，返回校验和格式的地址
func (k *Kit) Connect(ctx context.Context) (string, error) {
	accounts, err := provider.RequestAccounts(ctx, k.provider)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", apperrors.New(apperrors.ErrorTypeUnderlyingProvider, jsonrpc.CodeUnauthorized,
			"Wallet returned no accounts")
	}

	k.mu.Lock()
	k.address = accounts[0]
	k.session = true
	k.mu.Unlock()

	address := accounts[0].String()
	k.logger.WithFields(logrus.Fields{
		"address": connection.ShortAddress(address),
	}).Info("Connector kit session established")
	return address, nil
}

// Disconnect 结束会话，重复调用无副作用
func (k *Kit) Disconnect(ctx context.Context) error {
	k.mu.Lock()
	had := k.session
	k.session = false
	k.address = ethgo.ZeroAddress
	k.mu.Unlock()

	if had {
		k.logger.Info("Connector kit session closed")
	}
	return nil
}

// Status 返回会话状态。钱包不再授权会话账户时会话自动结束
func (k *Kit) Status(ctx context.Context) (string, bool, error) {
	k.mu.Lock()
	address, session := k.address, k.session
	k.mu.Unlock()

	if !session {
		return "", false, nil
	}

	accounts, err := provider.Accounts(ctx, k.provider)
	if err != nil {
		return "", false, err
	}
	for _, a := range accounts {
		if strings.EqualFold(a.String(), address.String()) {
			return address.String(), true, nil
		}
	}

	k.mu.Lock()
	if k.address == address {
		k.session = false
		k.address = ethgo.ZeroAddress
	}
	k.mu.Unlock()
	k.logger.WithField("address", connection.ShortAddress(address.String())).
		Info("Wallet revoked connector kit account, session closed")
	return "", false, nil
}

// Provider 返回组件使用的 provider
func (k *Kit) Provider() provider.Provider {
	return k.provider
}

var _ connection.DeclarativeBackend = (*Kit)(nil)
