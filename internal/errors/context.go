package errors

import (
	"context"

	"github.com/google/uuid"
)

// Operation 连接生命周期中的操作，写入日志的 operation 字段
type Operation string

const (
	// OpConnect 按当前方式建立连接
	OpConnect Operation = "connect"
	// OpDisconnect 断开当前连接
	OpDisconnect Operation = "disconnect"
	// OpSwitchMethod 切换连接方式
	OpSwitchMethod Operation = "switch_method"
	// OpResolveProvider 轮询外部钱包 provider
	OpResolveProvider Operation = "resolve_provider"
	// OpSetProvider 直接设置外部钱包 provider
	OpSetProvider Operation = "set_provider"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	operationKey
)

// WithRequestID 把请求ID放入 context，id 为空时生成新的
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom 读取 context 中的请求ID
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithOperation 标记 context 所属的连接操作。嵌套时外层操作优先，
// 例如 connect 内部的 provider 轮询仍记为 connect
func WithOperation(ctx context.Context, op Operation) context.Context {
	if OperationFrom(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFrom 读取 context 中的连接操作
func OperationFrom(ctx context.Context) Operation {
	if ctx == nil {
		return ""
	}
	op, _ := ctx.Value(operationKey).(Operation)
	return op
}

// GenerateRequestID 生成新的请求ID
func GenerateRequestID() string {
	return uuid.New().String()
}
