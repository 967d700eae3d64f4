package config

import (
	"fmt"
	"strings"
	"time"
)

// Config 表示应用程序的完整配置
type Config struct {
	// HTTP 服务器配置
	HTTP HTTPConfig `mapstructure:"http"`

	// API 鉴权配置
	API APIConfig `mapstructure:"api"`

	// 连接方式配置
	Connection ConnectionConfig `mapstructure:"connection"`

	// 持久化存储配置
	Storage StorageConfig `mapstructure:"storage"`

	// 注入式 provider 配置
	Injected InjectedConfig `mapstructure:"injected"`

	// 声明式连接组件配置
	Kit KitConfig `mapstructure:"kit"`

	// 嵌入式认证服务配置
	Embedded EmbeddedConfig `mapstructure:"embedded"`

	// 日志配置
	Log LogConfig `mapstructure:"log"`
}

// HTTPConfig 定义 HTTP 服务器配置
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Validate 验证 HTTP 配置
func (c *HTTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("http-host is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("http-port must be between 1 and %d", MaxPort)
	}
	return nil
}

// APIConfig 定义控制接口的鉴权配置
type APIConfig struct {
	AuthEnabled bool     `mapstructure:"auth-enabled"`
	Secret      string   `mapstructure:"secret"`
	Whitelist   []string `mapstructure:"whitelist"`
}

// Validate 验证 API 配置
func (c *APIConfig) Validate() error {
	if c.AuthEnabled && c.Secret == "" {
		return fmt.Errorf("api-secret is required when api auth is enabled")
	}
	return nil
}

// ConnectionConfig 定义连接管理配置
type ConnectionConfig struct {
	DefaultMethod    string `mapstructure:"default-method"`
	PollAttempts     int    `mapstructure:"poll-attempts"`
	PollIntervalMS   int    `mapstructure:"poll-interval-ms"`
	StatusIntervalMS int    `mapstructure:"status-interval-ms"`
}

// Validate 验证连接配置
func (c *ConnectionConfig) Validate() error {
	if c.DefaultMethod == "" {
		c.DefaultMethod = DefaultConnectionMethod
	}
	if c.PollAttempts <= 0 {
		return fmt.Errorf("connection-poll-attempts must be positive, got %d", c.PollAttempts)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("connection-poll-interval-ms must be positive, got %d", c.PollIntervalMS)
	}
	if c.StatusIntervalMS <= 0 {
		return fmt.Errorf("connection-status-interval-ms must be positive, got %d", c.StatusIntervalMS)
	}
	return nil
}

// PollInterval 返回轮询间隔
func (c *ConnectionConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// StatusInterval 返回状态对账间隔
func (c *ConnectionConfig) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalMS) * time.Millisecond
}

// StorageConfig 定义持久化存储配置
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Origin string `mapstructure:"origin"` // 存储作用域，等价于浏览器的 origin
}

// Validate 验证存储配置
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = DefaultStorageDriver
	}
	c.Driver = strings.ToLower(c.Driver)
	if !validStorageDrivers[c.Driver] {
		return fmt.Errorf("storage-driver must be one of: memory, file, sqlite, got: %s", c.Driver)
	}
	if c.Driver != StorageDriverMemory && c.Path == "" {
		return fmt.Errorf("storage-path is required for driver %s", c.Driver)
	}
	if c.Origin == "" {
		c.Origin = DefaultStorageOrigin
	}
	return nil
}

// InjectedConfig 定义注入式 provider 的端点配置。
// HTTPHost 为空表示当前环境没有注入式 provider。
type InjectedConfig struct {
	HTTPHost string `mapstructure:"http-host"` // 完整的host，如 http://127.0.0.1 或 https://wallet.example.com
	HTTPPort int    `mapstructure:"http-port"` // 端口，如果host中已包含端口或不需要端口，可以为0
	HTTPPath string `mapstructure:"http-path"` // 路径，如 /rpc
}

// Enabled 返回是否配置了注入式 provider
func (c *InjectedConfig) Enabled() bool {
	return c.HTTPHost != ""
}

// Validate 验证注入式 provider 配置
func (c *InjectedConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	// 验证host格式
	if !strings.HasPrefix(c.HTTPHost, "http://") && !strings.HasPrefix(c.HTTPHost, "https://") {
		return fmt.Errorf("injected-http-host must start with http:// or https://")
	}

	if c.HTTPPort < 0 || c.HTTPPort > MaxPort {
		return fmt.Errorf("injected-http-port must be between 0 and %d", MaxPort)
	}

	if c.HTTPPath == "" {
		c.HTTPPath = "/"
	}

	// 确保路径以/开头
	if !strings.HasPrefix(c.HTTPPath, "/") {
		c.HTTPPath = "/" + c.HTTPPath
	}

	return nil
}

// BuildURL 构建完整的注入式 provider URL
func (c *InjectedConfig) BuildURL() string {
	baseURL := c.HTTPHost

	// 如果指定了端口且端口大于0，添加到host中
	if c.HTTPPort > 0 {
		// 检查host是否已经包含端口
		if !hasPort(baseURL) {
			// 移除可能的尾部斜杠
			baseURL = strings.TrimSuffix(baseURL, "/")
			baseURL = fmt.Sprintf("%s:%d", baseURL, c.HTTPPort)
		}
	}

	return strings.TrimSuffix(baseURL, "/") + c.HTTPPath
}

// hasPort 检查URL是否已经包含端口
func hasPort(url string) bool {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	lastColon := strings.LastIndex(url, ":")
	if lastColon == -1 {
		return false
	}

	portPart := url[lastColon+1:]
	if strings.Contains(portPart, "/") {
		return false
	}

	for _, ch := range portPart {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	return true
}

// KitConfig 定义声明式连接组件使用的钱包端点
type KitConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// Validate 验证连接组件配置
func (c *KitConfig) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("kit-endpoint must start with http:// or https://")
	}
	return nil
}

// EmbeddedConfig 定义嵌入式认证服务配置
type EmbeddedConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	AppID       string `mapstructure:"app-id"`
	AccessKeyID string `mapstructure:"access-key-id"`
	SecretKey   string `mapstructure:"secret-key"`
}

// Enabled 返回是否配置了嵌入式认证服务
func (c *EmbeddedConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Validate 验证嵌入式认证配置
func (c *EmbeddedConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("embedded-endpoint must start with http:// or https://")
	}
	if c.AppID == "" {
		return fmt.Errorf("embedded-app-id is required")
	}
	if c.AccessKeyID == "" {
		return fmt.Errorf("embedded-access-key-id is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("embedded-secret-key is required")
	}
	return nil
}

// LogConfig 定义日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	if !validLogLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("log-level must be one of: debug, info, warn, error, fatal, got: %s", c.Level)
	}
	if !validLogFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("log-format must be one of: json, text, got: %s", c.Format)
	}
	return nil
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	// 设置默认值
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Output == "" {
		c.Log.Output = DefaultLogOutput
	}

	// 验证所有子配置
	validators := []Validator{&c.HTTP, &c.API, &c.Connection, &c.Storage, &c.Injected, &c.Kit, &c.Embedded, &c.Log}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// String 返回配置的安全摘要（不包含敏感信息）
func (c *Config) String() string {
	injected := "<none>"
	if c.Injected.Enabled() {
		injected = c.Injected.BuildURL()
	}
	embedded := "<none>"
	if c.Embedded.Enabled() {
		embedded = c.Embedded.Endpoint
	}

	return fmt.Sprintf(
		"HTTP: {Host: %s, Port: %d}, "+
			"API: {AuthEnabled: %t, Secret: [REDACTED]}, "+
			"Connection: {DefaultMethod: %s, PollAttempts: %d, PollIntervalMS: %d, StatusIntervalMS: %d}, "+
			"Storage: {Driver: %s, Path: %s, Origin: %s}, "+
			"Injected: %s, Kit: %s, "+
			"Embedded: {Endpoint: %s, AppID: %s, AccessKeyID: [REDACTED], SecretKey: [REDACTED]}, "+
			"Log: {Level: %s, Format: %s}",
		c.HTTP.Host, c.HTTP.Port,
		c.API.AuthEnabled,
		c.Connection.DefaultMethod, c.Connection.PollAttempts, c.Connection.PollIntervalMS, c.Connection.StatusIntervalMS,
		c.Storage.Driver, c.Storage.Path, c.Storage.Origin,
		injected, c.Kit.Endpoint,
		embedded, c.Embedded.AppID,
		c.Log.Level, c.Log.Format,
	)
}
