// Package testutil 提供测试用的钱包 JSON-RPC 服务和认证服务。
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// FlowEVMChainID 测试钱包默认返回的链ID
const FlowEVMChainID = "0x2eb"

// HandlerFunc 自定义方法处理函数
type HandlerFunc func(params json.RawMessage) (interface{}, *jsonrpc.Error)

// MockWallet 模拟钱包的 JSON-RPC 端点
type MockWallet struct {
	server   *httptest.Server
	mu       sync.RWMutex
	accounts []string
	chainID  string
	reject   bool
	handlers map[string]HandlerFunc
	calls    map[string]int
}

// NewMockWallet 创建持有指定账户的 mock 钱包
func NewMockWallet(accounts ...string) *MockWallet {
	m := &MockWallet{
		accounts: accounts,
		chainID:  FlowEVMChainID,
		handlers: make(map[string]HandlerFunc),
		calls:    make(map[string]int),
	}
	m.registerDefaultHandlers()
	m.server = httptest.NewServer(http.HandlerFunc(m.handleRequest))
	return m
}

// registerDefaultHandlers 注册默认的钱包方法
func (m *MockWallet) registerDefaultHandlers() {
	accounts := func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		out := make([]string, len(m.accounts))
		copy(out, m.accounts)
		return out, nil
	}
	m.handlers["eth_requestAccounts"] = accounts
	m.handlers["eth_accounts"] = accounts

	m.handlers["eth_chainId"] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.chainID, nil
	}
	m.handlers["net_version"] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return "747", nil
	}
	m.handlers["eth_getBalance"] = func(params json.RawMessage) (interface{}, *jsonrpc.Error) {
		var args []interface{}
		if err := json.Unmarshal(params, &args); err != nil || len(args) < 1 {
			return nil, jsonrpc.InvalidParamsError
		}
		return "0xde0b6b3a7640000", nil
	}
	m.handlers["personal_sign"] = func(params json.RawMessage) (interface{}, *jsonrpc.Error) {
		var args []interface{}
		if err := json.Unmarshal(params, &args); err != nil || len(args) < 2 {
			return nil, jsonrpc.InvalidParamsError
		}
		return "0x" + strings.Repeat("ab", 65), nil
	}
}

// SetAccounts 替换钱包账户
func (m *MockWallet) SetAccounts(accounts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = accounts
}

// SetReject 设置是否拒绝所有请求
func (m *MockWallet) SetReject(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject = reject
}

// RegisterHandler 注册自定义方法
func (m *MockWallet) RegisterHandler(method string, handler HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = handler
}

// Calls 返回方法被调用的次数
func (m *MockWallet) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// URL 返回服务器 URL
func (m *MockWallet) URL() string {
	return m.server.URL
}

// Close 关闭服务器
func (m *MockWallet) Close() {
	m.server.Close()
}

// handleRequest 处理单个或批量 JSON-RPC 请求
func (m *MockWallet) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonrpc.ParseError))
		return
	}

	requests, err := jsonrpc.ParseRequest(body)
	if err != nil {
		writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError))
		return
	}

	if !jsonrpc.IsBatch(body) {
		writeJSON(w, http.StatusOK, m.handleSingle(&requests[0]))
		return
	}

	responses := make([]*jsonrpc.Response, len(requests))
	for i := range requests {
		responses[i] = m.handleSingle(&requests[i])
	}
	writeJSON(w, http.StatusOK, responses)
}

// handleSingle 处理单个请求
func (m *MockWallet) handleSingle(req *jsonrpc.Request) *jsonrpc.Response {
	m.mu.Lock()
	m.calls[req.Method]++
	reject := m.reject
	handler, ok := m.handlers[req.Method]
	m.mu.Unlock()

	if reject {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewCustomError(jsonrpc.CodeUserRejected, "User rejected the request.", nil))
	}
	if !ok {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.MethodNotFoundError)
	}

	result, rpcErr := handler(req.Params)
	if rpcErr != nil {
		return jsonrpc.NewErrorResponse(req.ID, rpcErr)
	}
	resp, err := jsonrpc.NewResponse(req.ID, result)
	if err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.InternalError)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
