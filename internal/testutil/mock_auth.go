package testutil

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// 测试用认证服务凭证
const (
	MockAppID       = "test-app"
	MockAccessKeyID = "AK1234567890"
	MockSecretKey   = "test-secret-key"
)

// MockAuthWallet 认证服务返回的钱包条目
type MockAuthWallet struct {
	Address          string `json:"address"`
	WalletClientType string `json:"wallet_client_type"`
	ConnectorType    string `json:"connector_type"`
	RPCURL           string `json:"rpc_url,omitempty"`
}

// MockAuthServer 模拟嵌入式认证服务
type MockAuthServer struct {
	server      *httptest.Server
	mu          sync.RWMutex
	ready       bool
	failLogin   bool
	requireAuth bool
	sessions    map[string]bool
	nextSession int
	wallets     []MockAuthWallet
	// walletsAfter 钱包列表在第几次查询后才出现，模拟登录后的异步填充
	walletsAfter int
	walletCalls  int
	logouts      int
}

// NewMockAuthServer 创建 mock 认证服务
func NewMockAuthServer() *MockAuthServer {
	m := &MockAuthServer{
		ready:       true,
		requireAuth: true,
		sessions:    make(map[string]bool),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleRequest))
	return m
}

// SetReady 设置健康检查结果
func (m *MockAuthServer) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

// SetFailLogin 设置登录是否失败
func (m *MockAuthServer) SetFailLogin(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLogin = fail
}

// SetRequireAuth 设置是否校验请求签名
func (m *MockAuthServer) SetRequireAuth(require bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requireAuth = require
}

// SetWallets 设置会话下的钱包，在第 after 次查询时开始返回
func (m *MockAuthServer) SetWallets(after int, wallets ...MockAuthWallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walletsAfter = after
	m.wallets = wallets
	m.walletCalls = 0
}

// WalletCalls 返回钱包列表被查询的次数
func (m *MockAuthServer) WalletCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.walletCalls
}

// Logouts 返回已结束的会话数
func (m *MockAuthServer) Logouts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logouts
}

// ActiveSessions 返回当前有效的会话数
func (m *MockAuthServer) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// URL 返回服务器 URL
func (m *MockAuthServer) URL() string {
	return m.server.URL
}

// Close 关闭服务器
func (m *MockAuthServer) Close() {
	m.server.Close()
}

// handleRequest 处理 HTTP 请求
func (m *MockAuthServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		m.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	m.mu.RLock()
	requireAuth := m.requireAuth
	m.mu.RUnlock()
	if requireAuth {
		if err := validateSignature(r, body); err != nil {
			m.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case path == "health" && r.Method == http.MethodGet:
		m.mu.RLock()
		ready := m.ready
		m.mu.RUnlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "ready": ready})
	case path == "sessions" && r.Method == http.MethodPost:
		m.handleLogin(w, body)
	case len(parts) == 2 && parts[0] == "sessions" && r.Method == http.MethodDelete:
		m.handleLogout(w, parts[1])
	case len(parts) == 3 && parts[0] == "sessions" && parts[2] == "wallets" && r.Method == http.MethodGet:
		m.handleWallets(w, parts[1])
	default:
		m.writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

func (m *MockAuthServer) handleLogin(w http.ResponseWriter, body []byte) {
	var req struct {
		AppID string `json:"app_id"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.AppID != MockAppID {
		m.writeError(w, http.StatusBadRequest, "Unknown app")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLogin {
		m.writeError(w, http.StatusUnauthorized, "Login cancelled")
		return
	}
	m.nextSession++
	id := fmt.Sprintf("sess_%d", m.nextSession)
	m.sessions[id] = true
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id, "user_id": "did:privy:test-user"})
}

func (m *MockAuthServer) handleLogout(w http.ResponseWriter, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sessions[id] {
		m.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	delete(m.sessions, id)
	m.logouts++
	w.WriteHeader(http.StatusNoContent)
}

func (m *MockAuthServer) handleWallets(w http.ResponseWriter, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sessions[id] {
		m.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	m.walletCalls++
	wallets := []MockAuthWallet{}
	if m.walletsAfter > 0 && m.walletCalls >= m.walletsAfter {
		wallets = m.wallets
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"wallets": wallets})
}

func (m *MockAuthServer) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"code": status, "message": message})
}

// validateSignature 按 WALLET-AUTH 方案校验请求签名
func validateSignature(r *http.Request, body []byte) error {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "WALLET-AUTH ") {
		return fmt.Errorf("missing authorization")
	}
	credential := strings.TrimPrefix(header, "WALLET-AUTH ")
	ak, signature, ok := strings.Cut(credential, ":")
	if !ok || ak != MockAccessKeyID {
		return fmt.Errorf("invalid access key")
	}
	if r.Header.Get("X-App-ID") != MockAppID {
		return fmt.Errorf("invalid app id")
	}

	hash := sha256.Sum256(body)
	signingString := strings.Join([]string{
		r.Method,
		r.URL.Path,
		base64.StdEncoding.EncodeToString(hash[:]),
		r.Header.Get("Content-Type"),
		r.Header.Get("Date"),
	}, "\n")

	mac := hmac.New(sha256.New, []byte(MockSecretKey))
	mac.Write([]byte(signingString))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
