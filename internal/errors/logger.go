package errors

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `json:"level" yaml:"level"`
	Format       string `json:"format" yaml:"format"`
	Output       string `json:"output" yaml:"output"`
	EnableCaller bool   `json:"enable_caller" yaml:"enable_caller"`
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	}
}

// NewLogger 按配置创建 logrus 日志器
func NewLogger(config *LoggerConfig) (*logrus.Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	logger.SetLevel(level)

	formatter, err := createFormatter(config.Format, config.EnableCaller)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}
	logger.SetFormatter(formatter)
	logger.SetReportCaller(config.EnableCaller)

	output, err := createOutput(config.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	logger.SetOutput(output)

	return logger, nil
}

// createFormatter 创建格式化器
func createFormatter(format string, enableCaller bool) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				if !enableCaller {
					return "", ""
				}
				// 简化调用者信息
				filename := f.File
				if idx := strings.LastIndex(filename, "/"); idx >= 0 {
					filename = filename[idx+1:]
				}
				return fmt.Sprintf("%s:%d", filename, f.Line), f.Function
			},
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// createOutput 创建输出
func createOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		// #nosec G304 - 日志文件路径来自配置
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return file, nil
	}
}

// EntryFromContext 返回带有请求ID和操作名称的日志条目
func EntryFromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	fields := logrus.Fields{}
	if requestID := RequestIDFrom(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	if op := OperationFrom(ctx); op != "" {
		fields["operation"] = string(op)
	}
	return logger.WithFields(fields)
}

// ErrorFields 将错误展开为日志字段
func ErrorFields(err error) logrus.Fields {
	if err == nil {
		return logrus.Fields{}
	}
	appErr := ConvertError(err)
	fields := logrus.Fields{
		"error_type": string(appErr.Type),
		"error_code": appErr.Code,
		"error":      appErr.Message,
	}
	if appErr.Details != "" {
		fields["error_details"] = appErr.Details
	}
	for k, v := range appErr.Context {
		fields["context_"+k] = v
	}
	return fields
}

// LogOperation 记录操作耗时及结果
func LogOperation(entry *logrus.Entry, op Operation, startTime time.Time, err error) {
	entry = entry.WithFields(logrus.Fields{
		"operation":   string(op),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		entry.WithFields(ErrorFields(err)).Error("Operation failed")
		return
	}
	entry.Debug("Operation completed successfully")
}
