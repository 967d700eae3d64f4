package config

const (
	// MaxPort 最大端口号
	MaxPort = 65535

	// LogLevelDebug 调试日志级别
	LogLevelDebug = "debug"
	// LogLevelInfo 信息日志级别
	LogLevelInfo = "info"
	// LogLevelWarn 警告日志级别
	LogLevelWarn = "warn"
	// LogLevelError 错误日志级别
	LogLevelError = "error"
	// LogLevelFatal 致命日志级别
	LogLevelFatal = "fatal"

	// LogFormatJSON JSON 日志格式
	LogFormatJSON = "json"
	// LogFormatText 文本日志格式
	LogFormatText = "text"

	// DefaultHTTPHost 默认 HTTP 主机
	DefaultHTTPHost = "localhost"
	// DefaultHTTPPort 默认 HTTP 端口
	DefaultHTTPPort = 9100

	// DefaultMaxRequestSizeMB 默认最大请求大小（MB）
	DefaultMaxRequestSizeMB int64 = 10

	// DefaultConnectionMethod 默认连接方式（声明式连接组件）
	DefaultConnectionMethod = "rainbowkit"
	// DefaultPollAttempts 外部 provider 轮询的最大次数
	DefaultPollAttempts = 15
	// DefaultPollIntervalMS 外部 provider 轮询间隔（毫秒）
	DefaultPollIntervalMS = 500
	// DefaultStatusIntervalMS 连接状态对账间隔（毫秒）
	DefaultStatusIntervalMS = 1000

	// StorageDriverMemory 内存存储
	StorageDriverMemory = "memory"
	// StorageDriverFile JSON 文件存储
	StorageDriverFile = "file"
	// StorageDriverSQLite SQLite 存储
	StorageDriverSQLite = "sqlite"

	// DefaultStorageDriver 默认存储驱动
	DefaultStorageDriver = StorageDriverFile
	// DefaultStoragePath 默认存储路径（相对于用户主目录）
	DefaultStoragePath = ".walletrpc/storage.json"
	// DefaultStorageOrigin 默认存储作用域
	DefaultStorageOrigin = "http://localhost:9100"

	// DefaultKitEndpoint 默认连接组件钱包端点
	DefaultKitEndpoint = "http://localhost:8545"

	// DefaultLogLevel 默认日志级别
	DefaultLogLevel = LogLevelInfo
	// DefaultLogFormat 默认日志格式
	DefaultLogFormat = LogFormatText
	// DefaultLogOutput 默认日志输出
	DefaultLogOutput = "stdout"
)

// Validator 验证器接口
type Validator interface {
	Validate() error
}

// 有效的日志级别
var validLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
	LogLevelFatal: true,
}

// 有效的日志格式
var validLogFormats = map[string]bool{
	LogFormatJSON: true,
	LogFormatText: true,
}

// 有效的存储驱动
var validStorageDrivers = map[string]bool{
	StorageDriverMemory: true,
	StorageDriverFile:   true,
	StorageDriverSQLite: true,
}
