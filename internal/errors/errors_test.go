package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

func TestNew(t *testing.T) {
	appErr := New(ErrorTypeInvalidMethod, jsonrpc.CodeInvalidParams, "Invalid connection method")

	if appErr.Type != ErrorTypeInvalidMethod {
		t.Errorf("Expected type %s, got %s", ErrorTypeInvalidMethod, appErr.Type)
	}
	if appErr.Code != jsonrpc.CodeInvalidParams {
		t.Errorf("Expected code %d, got %d", jsonrpc.CodeInvalidParams, appErr.Code)
	}
	if appErr.Context == nil {
		t.Error("Expected Context to be initialized")
	}
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("dial tcp: connection refused")
	appErr := Wrap(originalErr, ErrorTypeAuthUnavailable, jsonrpc.CodeDisconnected, "Auth service unavailable")

	if appErr.OriginalErr != originalErr {
		t.Error("Expected OriginalErr to be set")
	}
	if appErr.Details != "dial tcp: connection refused" {
		t.Errorf("Unexpected details %q", appErr.Details)
	}
	if !stderrors.Is(appErr, originalErr) {
		t.Error("Expected errors.Is to reach the original error")
	}

	if Wrap(nil, ErrorTypeInternal, jsonrpc.CodeInternalError, "x") != nil {
		t.Error("Expected nil for nil error input")
	}
}

func TestAppError_Is(t *testing.T) {
	err := Newf(ErrorTypeInvalidMethod, jsonrpc.CodeInvalidParams, "unknown method %q", "ledger")
	wrapped := fmt.Errorf("switch failed: %w", err)

	if !stderrors.Is(wrapped, ErrInvalidMethod) {
		t.Error("Expected wrapped error to match ErrInvalidMethod")
	}
	if stderrors.Is(wrapped, ErrProviderNotReady) {
		t.Error("Expected wrapped error not to match ErrProviderNotReady")
	}
	if !IsErrorType(wrapped, ErrorTypeInvalidMethod) {
		t.Error("IsErrorType() should see through wrapping")
	}
}

func TestAppError_ToJSONRPCError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode int
	}{
		{"invalid method", ErrInvalidMethod, jsonrpc.CodeInvalidParams},
		{"provider not ready", ErrProviderNotReady, jsonrpc.CodeUnauthorized},
		{"no provider available", ErrNoProviderAvailable, jsonrpc.CodeDisconnected},
		{"no injected provider", ErrNoInjectedProvider, jsonrpc.CodeDisconnected},
		{"superseded", ErrSuperseded, jsonrpc.CodeUnauthorized},
		{"user rejected", ErrUserRejected, jsonrpc.CodeUserRejected},
		{"internal", ErrInternal, jsonrpc.CodeInternalError},
		{"timeout", ErrTimeout, jsonrpc.CodeServerErrorStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpcErr := tt.err.ToJSONRPCError()
			if rpcErr.Code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, rpcErr.Code)
			}
			data, ok := rpcErr.Data.(map[string]interface{})
			if !ok || data["type"] != string(tt.err.Type) {
				t.Errorf("Expected data type %s, got %v", tt.err.Type, rpcErr.Data)
			}
		})
	}

	t.Run("wallet error passes through", func(t *testing.T) {
		walletErr := jsonrpc.NewCustomError(jsonrpc.CodeUserRejected, "User rejected the request.", nil)
		appErr := NewConverter().FromProvider(walletErr)
		if appErr.Type != ErrorTypeUnderlyingProvider {
			t.Fatalf("Expected type %s, got %s", ErrorTypeUnderlyingProvider, appErr.Type)
		}
		if got := appErr.ToJSONRPCError(); got != walletErr {
			t.Errorf("Expected original wallet error, got %v", got)
		}
	})
}

func TestConverter_FromProvider(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"connection failed", provider.NewError(provider.ErrorCodeConnectionFailed, "refused", nil), ErrorTypeUnderlyingProvider},
		{"invalid response", provider.NewError(provider.ErrorCodeInvalidResponse, "bad json", nil), ErrorTypeUnderlyingProvider},
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout},
		{"plain error", fmt.Errorf("boom"), ErrorTypeUnderlyingProvider},
		{"already classified", ErrNoInjectedProvider, ErrorTypeNoInjectedProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := c.FromProvider(tt.err)
			if appErr.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, appErr.Type)
			}
		})
	}

	if c.FromProvider(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestConvertError(t *testing.T) {
	if got := ConvertError(jsonrpc.MethodNotFoundError); got.Type != ErrorTypeMethodNotFound {
		t.Errorf("Expected %s, got %s", ErrorTypeMethodNotFound, got.Type)
	}
	if got := ConvertError(fmt.Errorf("plain")); got.Type != ErrorTypeInternal {
		t.Errorf("Expected %s, got %s", ErrorTypeInternal, got.Type)
	}
	if got := ConvertToJSONRPC(ErrNoProviderAvailable); got.Code != jsonrpc.CodeDisconnected {
		t.Errorf("Expected code %d, got %d", jsonrpc.CodeDisconnected, got.Code)
	}
	if ConvertError(nil) != nil || ConvertToJSONRPC(nil) != nil {
		t.Error("Expected nil for nil input")
	}
}

func TestClassification(t *testing.T) {
	if !IsRetryable(ErrNoProviderAvailable) {
		t.Error("Expected no-provider to be retryable")
	}
	if IsRetryable(ErrInvalidMethod) {
		t.Error("Expected invalid method not to be retryable")
	}
	if !IsClientError(ErrInvalidMethod) {
		t.Error("Expected invalid method to be a client error")
	}

	statusTests := []struct {
		err  error
		want int
	}{
		{ErrInvalidMethod, 400},
		{ErrProviderNotReady, 403},
		{ErrSuperseded, 409},
		{ErrNoInjectedProvider, 503},
		{ErrUnderlyingProvider, 502},
		{ErrTimeout, 504},
		{fmt.Errorf("plain"), 500},
	}
	for _, tt := range statusTests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if RequestIDFrom(ctx) == "" {
		t.Error("Expected generated request id")
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Error("Expected empty request id without value")
	}

	ctx = WithOperation(ctx, OpConnect)
	if got := OperationFrom(ctx); got != OpConnect {
		t.Errorf("Expected operation connect, got %s", got)
	}

	// 轮询发生在 connect 内部时仍记为 connect
	nested := WithOperation(ctx, OpResolveProvider)
	if got := OperationFrom(nested); got != OpConnect {
		t.Errorf("Expected outer operation connect, got %s", got)
	}
	if got := OperationFrom(WithOperation(context.Background(), OpResolveProvider)); got != OpResolveProvider {
		t.Errorf("Expected operation resolve_provider, got %s", got)
	}

	if GenerateRequestID() == GenerateRequestID() {
		t.Error("Expected unique request ids")
	}
}
