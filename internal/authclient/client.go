// Package authclient 嵌入式认证服务客户端。
// 负责会话的登录和登出，并把会话下链接的钱包适配为连接管理器使用的钱包来源。
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/connection"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
	"github.com/mowind/walletrpc-go/internal/utils"
)

// healthTimeout 就绪检查的超时时间
const healthTimeout = 3 * time.Second

// Client 嵌入式认证服务客户端
type Client struct {
	cfg        *config.EmbeddedConfig
	httpClient HTTPClientInterface
	logger     *logrus.Logger

	mu        sync.Mutex
	sessionID string
	userID    string
	providers map[string]*provider.HTTPProvider
}

// NewClient 创建认证服务客户端
func NewClient(cfg *config.EmbeddedConfig, logger *logrus.Logger) *Client {
	return NewClientWithHTTPClient(cfg, NewHTTPClient(cfg, logger), logger)
}

// NewClientWithHTTPClient 使用指定的 HTTP 客户端创建认证服务客户端
func NewClientWithHTTPClient(cfg *config.EmbeddedConfig, httpClient HTTPClientInterface, logger *logrus.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		providers:  make(map[string]*provider.HTTPProvider),
	}
}

// Ready 检查认证服务是否可用
func (c *Client) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, utils.JoinURL(c.cfg.Endpoint, "/api/v1/health"), nil, &health); err != nil {
		c.logger.WithError(err).Debug("Embedded auth service health check failed")
		return false
	}
	return health.Ready
}

// Authenticated 返回是否持有有效会话
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID != ""
}

// SessionID 返回当前会话ID，未登录时为空
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Login 创建会话
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(LoginRequest{AppID: c.cfg.AppID})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	var session SessionResponse
	if err := c.do(ctx, http.MethodPost, utils.JoinURL(c.cfg.Endpoint, "/api/v1/sessions"), body, &session); err != nil {
		return err
	}
	if session.SessionID == "" {
		return apperrors.New(apperrors.ErrorTypeAuthFailed, jsonrpc.CodeUnauthorized, "Auth service returned no session")
	}

	c.mu.Lock()
	c.sessionID = session.SessionID
	c.userID = session.UserID
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"user_id":    session.UserID,
	}).Info("Embedded auth session created")
	return nil
}

// Logout 结束会话，未登录时直接返回
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	sessionID := c.sessionID
	c.sessionID = ""
	c.userID = ""
	providers := c.providers
	c.providers = make(map[string]*provider.HTTPProvider)
	c.mu.Unlock()

	for _, p := range providers {
		_ = p.Close()
	}
	if sessionID == "" {
		return nil
	}

	err := c.do(ctx, http.MethodDelete, utils.JoinURL(c.cfg.Endpoint, "/api/v1/sessions", sessionID), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	c.logger.WithField("session_id", sessionID).Info("Embedded auth session closed")
	return nil
}

// ListWallets 返回会话下链接的钱包，未登录时返回空列表
func (c *Client) ListWallets(ctx context.Context) ([]WalletInfo, error) {
	sessionID := c.SessionID()
	if sessionID == "" {
		return nil, nil
	}

	var resp WalletsResponse
	url := utils.JoinURL(c.cfg.Endpoint, "/api/v1/sessions", sessionID, "wallets")
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Wallets, nil
}

// Wallets 实现 connection.WalletSource，钱包来源在此处一次性归类
func (c *Client) Wallets(ctx context.Context) ([]connection.Wallet, error) {
	infos, err := c.ListWallets(ctx)
	if err != nil {
		return nil, err
	}

	wallets := make([]connection.Wallet, 0, len(infos))
	for _, info := range infos {
		address, ok := utils.ChecksumAddress(info.Address)
		if !ok {
			c.logger.WithField("address", info.Address).Warn("Skipping wallet with invalid address")
			continue
		}
		wallets = append(wallets, &wallet{
			client:   c,
			address:  address,
			origin:   info.Origin(),
			endpoint: info.RPCURL,
		})
	}
	return wallets, nil
}

// providerFor 返回端点对应的 provider，同一端点复用同一个实例
func (c *Client) providerFor(endpoint string) *provider.HTTPProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.providers[endpoint]; ok {
		return p
	}
	p := provider.NewHTTPProvider(endpoint)
	c.providers[endpoint] = p
	return p
}

// do 发送签名请求并解析 JSON 响应，out 为 nil 时忽略响应体
func (c *Client) do(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeAuthUnavailable, jsonrpc.CodeDisconnected, "Auth service unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal auth service response: %w", err)
	}
	return nil
}

// statusError 将非 2xx 响应转换为应用错误
func statusError(status int, body []byte) error {
	message := fmt.Sprintf("auth service request failed with status: %d", status)
	if errResp, _ := UnmarshalErrorResponse(body); errResp != nil {
		message = fmt.Sprintf("auth service error (code: %d): %s", errResp.Code, errResp.Message)
	}

	errType := apperrors.ErrorTypeAuthFailed
	code := jsonrpc.CodeUnauthorized
	if status >= http.StatusInternalServerError {
		errType = apperrors.ErrorTypeAuthUnavailable
		code = jsonrpc.CodeDisconnected
	}
	return apperrors.New(errType, code, message).WithContext("status", status)
}

func isNotFound(err error) bool {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		return false
	}
	status, _ := appErr.Context["status"].(int)
	return status == http.StatusNotFound
}

// wallet 会话下的一个钱包
type wallet struct {
	client   *Client
	address  string
	origin   connection.WalletOrigin
	endpoint string
}

func (w *wallet) Address() string                 { return w.address }
func (w *wallet) Origin() connection.WalletOrigin { return w.origin }

// Provider 钱包尚未上报 RPC 端点时返回 nil
func (w *wallet) Provider(ctx context.Context) (provider.Provider, error) {
	if w.endpoint == "" {
		return nil, nil
	}
	return w.client.providerFor(w.endpoint), nil
}

// VerifyInterfaceImplementation 验证接口实现
var (
	_ connection.AuthBackend  = (*Client)(nil)
	_ connection.WalletSource = (*Client)(nil)
)
