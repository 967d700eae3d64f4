package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mowind/walletrpc-go/internal/config"
)

// Flag 定义命令行标志
type Flag struct {
	Name         string
	DefaultValue interface{}
	Description  string
	BindTo       string // viper 键名
	Required     bool
}

// flags 定义所有命令行标志
var flags = []Flag{
	// HTTP 服务器配置
	{
		Name:         "http-host",
		DefaultValue: config.DefaultHTTPHost,
		Description:  "HTTP server host",
		BindTo:       "http.host",
	},
	{
		Name:         "http-port",
		DefaultValue: config.DefaultHTTPPort,
		Description:  "HTTP server port",
		BindTo:       "http.port",
	},

	// API 鉴权配置
	{
		Name:         "api-auth-enabled",
		DefaultValue: false,
		Description:  "Require a Bearer token or X-API-Key on the control API",
		BindTo:       "api.auth-enabled",
	},
	{
		Name:         "api-secret",
		DefaultValue: "",
		Description:  "Shared secret for the control API",
		BindTo:       "api.secret",
	},
	{
		Name:         "api-whitelist",
		DefaultValue: []string{"/health", "/ready", "/metrics"},
		Description:  "Paths that skip authentication",
		BindTo:       "api.whitelist",
	},

	// 连接方式配置
	{
		Name:         "connection-default-method",
		DefaultValue: config.DefaultConnectionMethod,
		Description:  "Connection method used when none is stored (rainbowkit, privy, injected)",
		BindTo:       "connection.default-method",
	},
	{
		Name:         "connection-poll-attempts",
		DefaultValue: config.DefaultPollAttempts,
		Description:  "Maximum attempts when waiting for the external wallet provider",
		BindTo:       "connection.poll-attempts",
	},
	{
		Name:         "connection-poll-interval-ms",
		DefaultValue: config.DefaultPollIntervalMS,
		Description:  "Interval between external wallet provider polls in milliseconds",
		BindTo:       "connection.poll-interval-ms",
	},
	{
		Name:         "connection-status-interval-ms",
		DefaultValue: config.DefaultStatusIntervalMS,
		Description:  "Interval between connection state reconciliations in milliseconds",
		BindTo:       "connection.status-interval-ms",
	},

	// 持久化存储配置
	{
		Name:         "storage-driver",
		DefaultValue: config.DefaultStorageDriver,
		Description:  "Storage driver (memory, file, sqlite)",
		BindTo:       "storage.driver",
	},
	{
		Name:         "storage-path",
		DefaultValue: config.DefaultStoragePath,
		Description:  "Storage path, relative paths resolve under the home directory",
		BindTo:       "storage.path",
	},
	{
		Name:         "storage-origin",
		DefaultValue: config.DefaultStorageOrigin,
		Description:  "Origin that scopes the stored keys",
		BindTo:       "storage.origin",
	},

	// 注入式 provider 配置
	{
		Name:         "injected-http-host",
		DefaultValue: "",
		Description:  "Injected wallet provider host, empty disables the injected method",
		BindTo:       "injected.http-host",
	},
	{
		Name:         "injected-http-port",
		DefaultValue: 0,
		Description:  "Injected wallet provider port",
		BindTo:       "injected.http-port",
	},
	{
		Name:         "injected-http-path",
		DefaultValue: "/",
		Description:  "Injected wallet provider path",
		BindTo:       "injected.http-path",
	},

	// 连接组件配置
	{
		Name:         "kit-endpoint",
		DefaultValue: config.DefaultKitEndpoint,
		Description:  "Wallet endpoint used by the connector kit, empty disables it",
		BindTo:       "kit.endpoint",
	},

	// 嵌入式认证配置
	{
		Name:         "embedded-endpoint",
		DefaultValue: "",
		Description:  "Embedded auth service endpoint, empty disables the embedded method",
		BindTo:       "embedded.endpoint",
	},
	{
		Name:         "embedded-app-id",
		DefaultValue: "",
		Description:  "Embedded auth application ID",
		BindTo:       "embedded.app-id",
	},
	{
		Name:         "embedded-access-key-id",
		DefaultValue: "",
		Description:  "Embedded auth access key ID",
		BindTo:       "embedded.access-key-id",
	},
	{
		Name:         "embedded-secret-key",
		DefaultValue: "",
		Description:  "Embedded auth secret key",
		BindTo:       "embedded.secret-key",
	},

	// 日志配置
	{
		Name:         "log-level",
		DefaultValue: config.DefaultLogLevel,
		Description:  "Log level (debug, info, warn, error, fatal)",
		BindTo:       "log.level",
	},
	{
		Name:         "log-format",
		DefaultValue: config.DefaultLogFormat,
		Description:  "Log format (json, text)",
		BindTo:       "log.format",
	},
	{
		Name:         "log-output",
		DefaultValue: config.DefaultLogOutput,
		Description:  "Log output (stdout, stderr or a file path)",
		BindTo:       "log.output",
	},
}

// registerFlags 注册所有命令行标志
func registerFlags(cmd *cobra.Command) error {
	for _, flag := range flags {
		// 根据类型添加标志
		switch v := flag.DefaultValue.(type) {
		case string:
			cmd.Flags().String(flag.Name, v, flag.Description)
		case int:
			cmd.Flags().Int(flag.Name, v, flag.Description)
		case bool:
			cmd.Flags().Bool(flag.Name, v, flag.Description)
		case []string:
			cmd.Flags().StringSlice(flag.Name, v, flag.Description)
		default:
			return fmt.Errorf("unsupported flag type: %T for flag %s", v, flag.Name)
		}

		// 绑定到 viper
		if err := viper.BindPFlag(flag.BindTo, cmd.Flags().Lookup(flag.Name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}

		// 标记必需标志
		if flag.Required {
			if err := cmd.MarkFlagRequired(flag.Name); err != nil {
				return fmt.Errorf("failed to mark flag %s required: %w", flag.Name, err)
			}
		}
	}

	return nil
}
