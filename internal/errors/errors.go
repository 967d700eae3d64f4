package errors

import (
	"fmt"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// ErrorType 错误类型
type ErrorType string

const (
	// 系统级错误
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeConfig     ErrorType = "CONFIG_ERROR"
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"

	// 网络/连接错误
	ErrorTypeConnection ErrorType = "CONNECTION_ERROR"
	ErrorTypeTimeout    ErrorType = "TIMEOUT_ERROR"
	ErrorTypeNetwork    ErrorType = "NETWORK_ERROR"

	// 连接方式相关错误
	ErrorTypeInvalidMethod       ErrorType = "INVALID_METHOD"
	ErrorTypeProviderNotReady    ErrorType = "PROVIDER_NOT_READY"
	ErrorTypeNoProviderAvailable ErrorType = "NO_PROVIDER_AVAILABLE"
	ErrorTypeNoInjectedProvider  ErrorType = "NO_INJECTED_PROVIDER"
	ErrorTypeUnderlyingProvider  ErrorType = "UNDERLYING_PROVIDER_ERROR"
	ErrorTypeSuperseded          ErrorType = "CONNECTION_SUPERSEDED"

	// 嵌入式认证服务错误
	ErrorTypeAuthUnavailable ErrorType = "AUTH_UNAVAILABLE"
	ErrorTypeAuthFailed      ErrorType = "AUTH_FAILED"

	// JSON-RPC 相关错误
	ErrorTypeJSONRPC        ErrorType = "JSONRPC_ERROR"
	ErrorTypeMethodNotFound ErrorType = "METHOD_NOT_FOUND"
	ErrorTypeInvalidParams  ErrorType = "INVALID_PARAMS"
	ErrorTypeUserRejected   ErrorType = "USER_REJECTED"
)

// AppError 应用统一的错误类型
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        int                    `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	OriginalErr error                  `json:"-"`
}

// New 创建新的应用错误
func New(errorType ErrorType, code int, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf 创建带格式的应用错误
func Newf(errorType ErrorType, code int, format string, args ...interface{}) *AppError {
	return New(errorType, code, fmt.Sprintf(format, args...))
}

// Wrap 包装现有错误
func Wrap(err error, errorType ErrorType, code int, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(errorType, code, message)
	appErr.OriginalErr = err
	appErr.Details = err.Error()
	return appErr
}

// Wrapf 包装现有错误并带格式
func Wrapf(err error, errorType ErrorType, code int, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, errorType, code, fmt.Sprintf(format, args...))
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s [%s:%d]: %s", e.Message, e.Type, e.Code, e.OriginalErr.Error())
	}
	if e.Details != "" {
		return fmt.Sprintf("%s [%s:%d] (details: %s)", e.Message, e.Type, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s:%d]", e.Message, e.Type, e.Code)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// Is 检查错误类型
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// ToJSONRPCError 转换为 JSON-RPC 错误
func (e *AppError) ToJSONRPCError() *jsonrpc.Error {
	// 钱包返回的原始错误原样透传
	if e.Type == ErrorTypeUnderlyingProvider {
		if rpcErr, ok := e.OriginalErr.(*jsonrpc.Error); ok {
			return rpcErr
		}
	}

	var jsonrpcCode int
	switch e.Type {
	case ErrorTypeInvalidParams, ErrorTypeValidation, ErrorTypeInvalidMethod:
		jsonrpcCode = jsonrpc.CodeInvalidParams
	case ErrorTypeMethodNotFound:
		jsonrpcCode = jsonrpc.CodeMethodNotFound
	case ErrorTypeUserRejected:
		jsonrpcCode = jsonrpc.CodeUserRejected
	case ErrorTypeProviderNotReady, ErrorTypeSuperseded, ErrorTypeAuthFailed:
		jsonrpcCode = jsonrpc.CodeUnauthorized
	case ErrorTypeNoProviderAvailable, ErrorTypeNoInjectedProvider, ErrorTypeAuthUnavailable:
		jsonrpcCode = jsonrpc.CodeDisconnected
	case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypeUnderlyingProvider:
		jsonrpcCode = jsonrpc.CodeServerErrorStart
	default:
		jsonrpcCode = jsonrpc.CodeInternalError
	}

	errorData := map[string]interface{}{
		"type": string(e.Type),
	}
	if e.Details != "" {
		errorData["details"] = e.Details
	}
	for k, v := range e.Context {
		errorData[k] = v
	}

	return &jsonrpc.Error{
		Code:    jsonrpcCode,
		Message: e.Message,
		Data:    errorData,
	}
}

// Common errors 常用错误
var (
	// 内部错误
	ErrInternal   = New(ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal server error")
	ErrConfig     = New(ErrorTypeConfig, jsonrpc.CodeInternalError, "Configuration error")
	ErrValidation = New(ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Validation failed")

	// 连接错误
	ErrConnection = New(ErrorTypeConnection, jsonrpc.CodeServerErrorStart, "Connection failed")
	ErrTimeout    = New(ErrorTypeTimeout, jsonrpc.CodeServerErrorStart+1, "Request timeout")
	ErrNetwork    = New(ErrorTypeNetwork, jsonrpc.CodeServerErrorStart+2, "Network error")

	// 连接方式错误
	ErrInvalidMethod       = New(ErrorTypeInvalidMethod, jsonrpc.CodeInvalidParams, "Invalid connection method")
	ErrProviderNotReady    = New(ErrorTypeProviderNotReady, jsonrpc.CodeUnauthorized, "Embedded provider not ready")
	ErrNoProviderAvailable = New(ErrorTypeNoProviderAvailable, jsonrpc.CodeDisconnected, "No external wallet provider available")
	ErrNoInjectedProvider  = New(ErrorTypeNoInjectedProvider, jsonrpc.CodeDisconnected, "No injected wallet provider found")
	ErrUnderlyingProvider  = New(ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart, "Wallet provider error")
	ErrSuperseded          = New(ErrorTypeSuperseded, jsonrpc.CodeUnauthorized, "Connection attempt superseded")

	// 认证服务错误
	ErrAuthUnavailable = New(ErrorTypeAuthUnavailable, jsonrpc.CodeDisconnected, "Auth service unavailable")
	ErrAuthFailed      = New(ErrorTypeAuthFailed, jsonrpc.CodeUnauthorized, "Authentication failed")

	// JSON-RPC 错误
	ErrMethodNotFound = New(ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound, "Method not found")
	ErrInvalidParams  = New(ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid parameters")
	ErrUserRejected   = New(ErrorTypeUserRejected, jsonrpc.CodeUserRejected, "User rejected the request")
)
