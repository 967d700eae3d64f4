package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/authclient"
	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/testutil"
)

func newTestConfig(endpoint string) *config.EmbeddedConfig {
	return &config.EmbeddedConfig{
		Endpoint:    endpoint,
		AppID:       testutil.MockAppID,
		AccessKeyID: testutil.MockAccessKeyID,
		SecretKey:   testutil.MockSecretKey,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestTestSignRequest(t *testing.T) {
	cfg := newTestConfig("http://localhost:8080")

	if err := testSignRequest(cfg, quietLogger()); err != nil {
		t.Errorf("testSignRequest() error = %v", err)
	}
}

func TestTestSession(t *testing.T) {
	server := testutil.NewMockAuthServer()
	defer server.Close()
	server.SetWallets(1,
		testutil.MockAuthWallet{Address: "0x1111111111111111111111111111111111111111", WalletClientType: "privy"},
		testutil.MockAuthWallet{Address: "0x9b2055d370f73ec7d8a03e965129118dc8f5bf83", WalletClientType: "metamask", ConnectorType: "injected"},
	)

	client := authclient.NewClient(newTestConfig(server.URL()), quietLogger())
	if err := testSession(client); err != nil {
		t.Fatalf("testSession() error = %v", err)
	}

	if server.Logouts() != 1 {
		t.Errorf("Expected 1 logout, got %d", server.Logouts())
	}
	if server.ActiveSessions() != 0 {
		t.Errorf("Expected no active sessions, got %d", server.ActiveSessions())
	}
}

func TestTestSession_NotReady(t *testing.T) {
	server := testutil.NewMockAuthServer()
	defer server.Close()
	server.SetReady(false)

	client := authclient.NewClient(newTestConfig(server.URL()), quietLogger())
	if err := testSession(client); err == nil {
		t.Error("Expected error when auth service is not ready")
	}
}

func TestTestErrorHandling(t *testing.T) {
	server := testutil.NewMockAuthServer()
	defer server.Close()

	if err := testErrorHandling(newTestConfig(server.URL()), quietLogger()); err != nil {
		t.Errorf("testErrorHandling() error = %v", err)
	}

	// 服务不校验签名时错误的密钥也能登录
	server.SetRequireAuth(false)
	if err := testErrorHandling(newTestConfig(server.URL()), quietLogger()); err == nil {
		t.Error("Expected error when the bad secret is accepted")
	}
}

func TestLoadEmbeddedConfig(t *testing.T) {
	t.Setenv("WALLETRPC_EMBEDDED_ENDPOINT", "")
	if _, err := loadEmbeddedConfig(); err == nil {
		t.Error("Expected error without endpoint")
	}

	t.Setenv("WALLETRPC_EMBEDDED_ENDPOINT", "http://auth.example.com")
	t.Setenv("WALLETRPC_EMBEDDED_APP_ID", testutil.MockAppID)
	t.Setenv("WALLETRPC_EMBEDDED_ACCESS_KEY_ID", testutil.MockAccessKeyID)
	t.Setenv("WALLETRPC_EMBEDDED_SECRET_KEY", testutil.MockSecretKey)

	cfg, err := loadEmbeddedConfig()
	if err != nil {
		t.Fatalf("loadEmbeddedConfig() error = %v", err)
	}
	if cfg.Endpoint != "http://auth.example.com" || cfg.AppID != testutil.MockAppID {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}
