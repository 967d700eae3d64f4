package authclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mowind/walletrpc-go/internal/connection"
)

// HealthResponse 认证服务健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// LoginRequest 创建会话请求
type LoginRequest struct {
	AppID string `json:"app_id"`
}

// SessionResponse 会话信息
type SessionResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// WalletInfo 会话下已链接的钱包
type WalletInfo struct {
	Address          string `json:"address"`
	WalletClientType string `json:"wallet_client_type"`
	ConnectorType    string `json:"connector_type"`
	RPCURL           string `json:"rpc_url,omitempty"`
}

// WalletsResponse 钱包列表响应
type WalletsResponse struct {
	Wallets []WalletInfo `json:"wallets"`
}

// ErrorResponse 认证服务错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// 钱包客户端与连接器类型
const (
	ClientTypeEmbedded     = "privy"
	ClientTypeInjected     = "injected"
	ConnectorInjected      = "injected"
	ConnectorWalletConnect = "wallet_connect"
)

// Origin 根据客户端类型和连接器类型对钱包归类
func (w WalletInfo) Origin() connection.WalletOrigin {
	switch {
	case strings.Contains(w.WalletClientType, ClientTypeEmbedded):
		return connection.WalletOriginEmbedded
	case w.WalletClientType == ClientTypeInjected, w.ConnectorType == ConnectorInjected:
		return connection.WalletOriginInjected
	case w.ConnectorType == ConnectorWalletConnect:
		return connection.WalletOriginWalletConnect
	default:
		return connection.WalletOriginOther
	}
}

// UnmarshalErrorResponse 解析错误响应
func UnmarshalErrorResponse(data []byte) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.Message == "" {
		return nil, fmt.Errorf("empty error response")
	}
	return &resp, nil
}
