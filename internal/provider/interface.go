package provider

import (
	"context"
	"encoding/json"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// Provider 表示一个 EIP-1193 风格的钱包 provider。
// 钱包拒绝或执行失败时返回 *jsonrpc.Error，传输层失败时返回 *Error。
type Provider interface {
	Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
}

// Forwarder 定义可以原样转发 JSON-RPC 报文的 provider
type Forwarder interface {
	Provider

	// ForwardRequest 转发单个 JSON-RPC 请求
	ForwardRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

	// ForwardBatchRequest 转发批量 JSON-RPC 请求
	ForwardBatchRequest(ctx context.Context, requests []jsonrpc.Request) ([]jsonrpc.Response, error)

	// Endpoint 返回 provider 端点URL
	Endpoint() string
}

// Func 将普通函数适配为 Provider
type Func func(ctx context.Context, method string, params interface{}) (json.RawMessage, error)

// Request 实现 Provider 接口
func (f Func) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	return f(ctx, method, params)
}

// VerifyInterfaceImplementation 验证接口实现
var (
	_ Forwarder = (*HTTPProvider)(nil)
	_ Provider  = Func(nil)
)
