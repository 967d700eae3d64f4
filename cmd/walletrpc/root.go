package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mowind/walletrpc-go/internal/authclient"
	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/connection"
	"github.com/mowind/walletrpc-go/internal/connectorkit"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/metrics"
	"github.com/mowind/walletrpc-go/internal/provider"
	"github.com/mowind/walletrpc-go/internal/server"
	"github.com/mowind/walletrpc-go/internal/storage"
)

var cfgFile string

// rootCmd 表示基础命令
var rootCmd = &cobra.Command{
	Use:   "walletrpc",
	Short: "walletrpc-go manages wallet connection methods behind a JSON-RPC and REST surface",
	Long: `walletrpc-go lets a dev tool pick how it talks to an EVM wallet.

It supports three connection methods:
1. rainbowkit: a connector kit that owns its own session
2. privy: embedded auth that bridges to the user's external wallet
3. injected: the injected wallet provider used directly

The selected method is persisted across restarts. JSON-RPC calls posted to /rpc
are answered locally for account methods and forwarded to the active wallet otherwise.`,
	Version: Version,
	Run:     run,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局标志
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.walletrpc.yaml)")

	// 注册所有标志
	if err := registerFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(methodsCmd, catalogCmd, versionCmd)
}

// initConfig 初始化配置
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".walletrpc")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WALLETRPC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig 读取并验证配置
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return &cfg, nil
}

// environment 按配置推断各连接方式是否可用
func environment(cfg *config.Config) connection.Environment {
	return connection.Environment{
		KitAvailable:      cfg.Kit.Endpoint != "",
		EmbeddedAvailable: cfg.Embedded.Enabled(),
		InjectedAvailable: cfg.Injected.Enabled(),
	}
}

// run 是主命令的执行函数
func run(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// 打印配置摘要
	logger.Infof("Starting walletrpc-go with configuration: %s", cfg.String())

	controller, m, cleanup := buildController(cfg, logger)
	defer cleanup()

	// 创建并启动服务器
	srv := server.New(cfg, server.Dependencies{
		Controller: controller,
		Metrics:    m,
		Logger:     logger,
	})
	if err := srv.Start(); err != nil {
		logger.WithError(err).Error("Failed to start server")
		return
	}

	// 等待中断信号
	waitForInterrupt(srv, logger)
}

// buildController 按配置装配存储、各连接后端和连接控制器
func buildController(cfg *config.Config, logger *logrus.Logger) (*connection.Controller, *metrics.Metrics, func()) {
	m := metrics.New()

	kv := storage.Open(cfg.Storage, logger)
	registry := connection.NewRegistry(environment(cfg))
	store := connection.NewSelectionStore(registry, kv, logger,
		connection.WithDefaultMethod(connection.Method(cfg.Connection.DefaultMethod)))

	var (
		source connection.WalletSource
		auth   connection.AuthBackend
	)
	if cfg.Embedded.Enabled() {
		client := authclient.NewClient(&cfg.Embedded, logger)
		source = client
		auth = client
	}

	bridge := connection.NewBridge(source, cfg.Connection.PollAttempts, cfg.Connection.PollInterval(), logger,
		connection.WithPollObserver(m.BridgePoll))

	var injected provider.Provider
	if cfg.Injected.Enabled() {
		injected = provider.NewHTTPProvider(cfg.Injected.BuildURL())
	}
	manager := connection.NewManager(store, bridge, injected, logger)

	var kit connection.DeclarativeBackend
	if cfg.Kit.Endpoint != "" {
		kit = connectorkit.New(provider.NewHTTPProvider(cfg.Kit.Endpoint), logger)
	}

	controller := connection.NewController(manager, kit, auth, cfg.Connection.StatusInterval(), logger,
		connection.WithObserver(m))

	cleanup := func() {
		manager.Close()
		if err := kv.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}
	return controller, m, cleanup
}

// waitForInterrupt 等待中断信号并优雅关闭服务器
func waitForInterrupt(srv *server.Server, logger *logrus.Logger) {
	// 创建信号通道
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Received signal, shutting down")

	// 创建关闭上下文
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Stop(ctx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
		return
	}

	logger.Info("Server shutdown complete")
}
