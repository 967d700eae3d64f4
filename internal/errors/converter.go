package errors

import (
	"context"
	stderrors "errors"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// Converter 错误转换器
type Converter struct{}

// NewConverter 创建新的错误转换器
func NewConverter() *Converter {
	return &Converter{}
}

// FromJSONRPC 从 JSON-RPC 错误转换
func (c *Converter) FromJSONRPC(jsonErr *jsonrpc.Error) *AppError {
	if jsonErr == nil {
		return nil
	}

	// 根据错误码映射错误类型
	var errorType ErrorType
	switch {
	case jsonErr.Code == jsonrpc.CodeMethodNotFound:
		errorType = ErrorTypeMethodNotFound
	case jsonErr.Code == jsonrpc.CodeInvalidParams:
		errorType = ErrorTypeInvalidParams
	case jsonErr.Code == jsonrpc.CodeUserRejected:
		errorType = ErrorTypeUserRejected
	case jsonErr.Code == jsonrpc.CodeInternalError, jsonrpc.IsServerError(jsonErr.Code):
		errorType = ErrorTypeInternal
	default:
		errorType = ErrorTypeJSONRPC
	}

	return &AppError{
		Type:        errorType,
		Code:        jsonErr.Code,
		Message:     jsonErr.Message,
		OriginalErr: jsonErr,
		Context: map[string]interface{}{
			"original_data": jsonErr.Data,
		},
	}
}

// FromProvider 将钱包 provider 返回的错误转换为 UNDERLYING_PROVIDER_ERROR。
// 钱包自身的 JSON-RPC 错误（如 4001 用户拒绝）会保留在 OriginalErr 中，
// 传输层错误按 provider.ErrorCode 区分。
func (c *Converter) FromProvider(providerErr error) *AppError {
	if providerErr == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(providerErr, &appErr) {
		return appErr
	}

	var rpcErr *jsonrpc.Error
	if stderrors.As(providerErr, &rpcErr) {
		return Wrap(rpcErr, ErrorTypeUnderlyingProvider, rpcErr.Code, rpcErr.Message)
	}

	var perr *provider.Error
	if stderrors.As(providerErr, &perr) {
		switch perr.Code {
		case provider.ErrorCodeConnectionFailed:
			return Wrap(perr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart, "Connection to wallet provider failed")
		case provider.ErrorCodeTimeout:
			return Wrap(perr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart+1, "Wallet provider timeout")
		case provider.ErrorCodeInvalidResponse:
			return Wrap(perr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart+2, "Invalid response from wallet provider")
		case provider.ErrorCodeIDMismatch:
			return Wrap(perr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart+3, "Response ID mismatch from wallet provider")
		default:
			return Wrap(perr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart+10, "Wallet provider error")
		}
	}

	if stderrors.Is(providerErr, context.DeadlineExceeded) {
		return Wrap(providerErr, ErrorTypeTimeout, jsonrpc.CodeServerErrorStart+1, "Wallet provider timeout")
	}

	return Wrap(providerErr, ErrorTypeUnderlyingProvider, jsonrpc.CodeServerErrorStart+10, "Wallet provider error")
}

// ToJSONRPC 转换为 JSON-RPC 错误
func (c *Converter) ToJSONRPC(appErr *AppError) *jsonrpc.Error {
	if appErr == nil {
		return nil
	}
	return appErr.ToJSONRPCError()
}

// ConvertError 通用的错误转换函数
func ConvertError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var jsonErr *jsonrpc.Error
	if stderrors.As(err, &jsonErr) {
		return NewConverter().FromJSONRPC(jsonErr)
	}

	var perr *provider.Error
	if stderrors.As(err, &perr) {
		return NewConverter().FromProvider(perr)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorTypeTimeout, jsonrpc.CodeServerErrorStart+1, "Request timeout")
	}

	// 普通错误，包装为内部错误
	return Wrap(err, ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal error")
}

// ConvertToJSONRPC 快速转换为 JSON-RPC 错误
func ConvertToJSONRPC(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}
	return ConvertError(err).ToJSONRPCError()
}

// IsErrorType 检查错误链中是否存在指定类型的 AppError
func IsErrorType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable 检查错误是否可重试
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeConnection, ErrorTypeTimeout, ErrorTypeNetwork,
			ErrorTypeNoProviderAvailable, ErrorTypeProviderNotReady, ErrorTypeAuthUnavailable:
			return true
		}
	}
	return false
}

// IsClientError 检查是否是客户端错误（4xx 类）
func IsClientError(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeInvalidParams, ErrorTypeMethodNotFound, ErrorTypeInvalidMethod:
			return true
		}
	}
	return false
}

// HTTPStatus 返回 REST 接口使用的 HTTP 状态码
func HTTPStatus(err error) int {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return 500
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeInvalidParams, ErrorTypeInvalidMethod:
		return 400
	case ErrorTypeMethodNotFound:
		return 404
	case ErrorTypeSuperseded:
		return 409
	case ErrorTypeProviderNotReady, ErrorTypeUserRejected, ErrorTypeAuthFailed:
		return 403
	case ErrorTypeNoProviderAvailable, ErrorTypeNoInjectedProvider, ErrorTypeAuthUnavailable:
		return 503
	case ErrorTypeUnderlyingProvider, ErrorTypeConnection, ErrorTypeNetwork:
		return 502
	case ErrorTypeTimeout:
		return 504
	default:
		return 500
	}
}
