package router

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

func TestBaseHandler_Method(t *testing.T) {
	logger := logrus.New()
	handler := NewBaseHandler("test_method", logger)

	if handler.Method() != "test_method" {
		t.Errorf("Expected method 'test_method', got '%s'", handler.Method())
	}
}

func TestBaseHandler_ValidateParams(t *testing.T) {
	logger := logrus.New()
	handler := NewBaseHandler("test", logger)

	testCases := []struct {
		name           string
		params         json.RawMessage
		maxLength      int
		expectError    bool
		expectedLength int
	}{
		{
			name:           "within limit",
			params:         json.RawMessage(`["param1", "param2"]`),
			maxLength:      3,
			expectedLength: 2,
		},
		{
			name:           "empty array",
			params:         json.RawMessage(`[]`),
			maxLength:      0,
			expectedLength: 0,
		},
		{
			name:           "omitted params",
			params:         json.RawMessage(``),
			maxLength:      0,
			expectedLength: 0,
		},
		{
			name:        "too many",
			params:      json.RawMessage(`["param1", "param2"]`),
			maxLength:   1,
			expectError: true,
		},
		{
			name:        "not array",
			params:      json.RawMessage(`{"key": "value"}`),
			maxLength:   1,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := handler.ValidateParams(tc.params, tc.maxLength)

			if tc.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if len(result) != tc.expectedLength {
				t.Errorf("Expected %d params, got %d", tc.expectedLength, len(result))
			}
		})
	}
}

func TestBaseHandler_CreateSuccessResponse(t *testing.T) {
	logger := logrus.New()
	handler := NewBaseHandler("test", logger)

	response, err := handler.CreateSuccessResponse("test_id", []string{"0x9B2055d370F73eC7d8a03E965129118dC8F5bf83"})
	if err != nil {
		t.Fatalf("Failed to create success response: %v", err)
	}

	if response.Error != nil {
		t.Errorf("Expected no error, got: %v", response.Error)
	}

	if response.ID != "test_id" {
		t.Errorf("Expected ID 'test_id', got '%v'", response.ID)
	}

	var accounts []string
	if err := json.Unmarshal(response.Result, &accounts); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account, got %d", len(accounts))
	}
}

func TestBaseHandler_CreateErrorResponse(t *testing.T) {
	logger := logrus.New()
	handler := NewBaseHandler("test", logger)

	response := handler.CreateErrorResponse("test_id", jsonrpc.CodeInvalidParams, "Invalid parameters", "details")

	if response.Error == nil {
		t.Fatal("Expected error in response")
	}

	if response.Error.Code != jsonrpc.CodeInvalidParams {
		t.Errorf("Expected error code %d, got %d", jsonrpc.CodeInvalidParams, response.Error.Code)
	}

	if response.Error.Data != "details" {
		t.Errorf("Expected error data 'details', got '%v'", response.Error.Data)
	}

	invalid := handler.CreateInvalidParamsResponse("test_id", "Missing required parameter")
	if invalid.Error.Code != jsonrpc.CodeInvalidParams {
		t.Errorf("Expected error code %d, got %d", jsonrpc.CodeInvalidParams, invalid.Error.Code)
	}
}

func TestBaseHandler_CreateAppErrorResponse(t *testing.T) {
	logger := logrus.New()
	handler := NewBaseHandler("test", logger)

	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "no provider available",
			err:      apperrors.ErrNoProviderAvailable,
			wantCode: jsonrpc.CodeDisconnected,
		},
		{
			name:     "provider not ready",
			err:      apperrors.ErrProviderNotReady,
			wantCode: jsonrpc.CodeUnauthorized,
		},
		{
			name: "wallet rejection passes through",
			err: apperrors.NewConverter().FromProvider(
				jsonrpc.NewCustomError(jsonrpc.CodeUserRejected, "User rejected the request.", nil)),
			wantCode: jsonrpc.CodeUserRejected,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: jsonrpc.CodeInternalError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			response := handler.CreateAppErrorResponse(7, tc.err)
			if response.Error == nil {
				t.Fatal("Expected error in response")
			}
			if response.Error.Code != tc.wantCode {
				t.Errorf("Expected error code %d, got %d", tc.wantCode, response.Error.Code)
			}
			if response.ID != 7 {
				t.Errorf("Expected ID 7, got %v", response.ID)
			}
		})
	}
}
