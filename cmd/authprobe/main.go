package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mowind/walletrpc-go/internal/authclient"
	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/connection"
)

func main() {
	// 凭证从 WALLETRPC_EMBEDDED_* 环境变量读取
	embedded, err := loadEmbeddedConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== 嵌入式认证服务连通性测试 ===")
	fmt.Printf("Endpoint: %s\n", embedded.Endpoint)
	fmt.Printf("AppID: %s\n", embedded.AppID)
	fmt.Printf("AccessKeyID: %s\n", embedded.AccessKeyID)
	fmt.Printf("SecretKey: [REDACTED]\n")
	fmt.Println()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	failed := false
	step := func(title, ok string, fn func() error) {
		fmt.Println(title)
		if err := fn(); err != nil {
			failed = true
			fmt.Printf("❌ 失败: %v\n", err)
		} else {
			fmt.Printf("✅ %s\n", ok)
		}
		fmt.Println()
	}

	step("测试1: 测试签名请求构建", "签名请求构建成功", func() error {
		return testSignRequest(embedded, logger)
	})
	step("测试2: 测试登录、钱包列表和登出", "会话流程正常", func() error {
		return testSession(authclient.NewClient(embedded, logger))
	})
	step("测试3: 测试错误凭证", "错误处理正常", func() error {
		return testErrorHandling(embedded, logger)
	})

	if failed {
		os.Exit(1)
	}
}

// loadEmbeddedConfig 读取并验证嵌入式认证配置
func loadEmbeddedConfig() (*config.EmbeddedConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("WALLETRPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &config.EmbeddedConfig{
		Endpoint:    v.GetString("embedded.endpoint"),
		AppID:       v.GetString("embedded.app-id"),
		AccessKeyID: v.GetString("embedded.access-key-id"),
		SecretKey:   v.GetString("embedded.secret-key"),
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("WALLETRPC_EMBEDDED_ENDPOINT is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func testSignRequest(cfg *config.EmbeddedConfig, logger *logrus.Logger) error {
	body := []byte(`{"app_id":"` + cfg.AppID + `"}`)
	req, err := http.NewRequest(http.MethodPost, cfg.Endpoint+"/api/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	httpClient := authclient.NewHTTPClient(cfg, logger)
	if err := httpClient.SignRequest(req, body); err != nil {
		return fmt.Errorf("签名请求失败: %w", err)
	}

	// 验证请求头
	fmt.Printf("  Authorization: %s\n", req.Header.Get("Authorization"))
	fmt.Printf("  Date: %s\n", req.Header.Get("Date"))
	fmt.Printf("  Content-Type: %s\n", req.Header.Get("Content-Type"))

	authHeader := req.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, authclient.AuthScheme+" "+cfg.AccessKeyID+":") {
		return fmt.Errorf("unexpected authorization header: %q", authHeader)
	}
	if req.Header.Get("Date") == "" {
		return fmt.Errorf("date header is empty")
	}
	return nil
}

func testSession(client *authclient.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !client.Ready(ctx) {
		return fmt.Errorf("认证服务未就绪")
	}

	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("登录失败: %w", err)
	}
	fmt.Printf("  会话ID: %s\n", client.SessionID())

	wallets, err := client.Wallets(ctx)
	if err != nil {
		return fmt.Errorf("查询钱包失败: %w", err)
	}
	fmt.Printf("  已链接钱包数量: %d\n", len(wallets))
	for _, w := range wallets {
		fmt.Printf("    %s (%s)\n", connection.ShortAddress(w.Address()), w.Origin())
	}
	if external := connection.SelectExternalWallet(wallets); external != nil {
		fmt.Printf("  外部钱包: %s\n", external.Address())
	} else {
		fmt.Println("  💡 会话下没有外部钱包，privy 方式连接时会等待钱包出现")
	}

	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("登出失败: %w", err)
	}
	if client.Authenticated() {
		return fmt.Errorf("登出后会话仍然存在")
	}
	return nil
}

func testErrorHandling(cfg *config.EmbeddedConfig, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bad := *cfg
	bad.SecretKey = "invalid-" + cfg.SecretKey

	fmt.Println("  使用错误的密钥登录...")
	err := authclient.NewClient(&bad, logger).Login(ctx)
	if err == nil {
		return fmt.Errorf("错误的密钥登录成功")
	}
	fmt.Printf("    预期错误: %v\n", err)
	return nil
}
