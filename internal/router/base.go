package router

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// BaseHandler 提供处理器的基础功能
type BaseHandler struct {
	method string
	logger *logrus.Logger
}

// NewBaseHandler 创建基础处理器
func NewBaseHandler(method string, logger *logrus.Logger) *BaseHandler {
	return &BaseHandler{
		method: method,
		logger: logger,
	}
}

// Method 返回方法名
func (h *BaseHandler) Method() string {
	return h.method
}

// ValidateParams 验证参数为数组且长度不超过 maxLength，缺省参数视为空数组
func (h *BaseHandler) ValidateParams(params json.RawMessage, maxLength int) ([]json.RawMessage, error) {
	if len(params) == 0 {
		return nil, nil
	}

	var paramsArray []json.RawMessage
	if err := json.Unmarshal(params, &paramsArray); err != nil {
		return nil, fmt.Errorf("params must be an array: %v", err)
	}

	if len(paramsArray) > maxLength {
		return nil, fmt.Errorf("expected at most %d parameters, got %d", maxLength, len(paramsArray))
	}

	return paramsArray, nil
}

// CreateSuccessResponse 创建成功响应
func (h *BaseHandler) CreateSuccessResponse(id interface{}, result interface{}) (*jsonrpc.Response, error) {
	response, err := jsonrpc.NewResponse(id, result)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create success response")
		return nil, fmt.Errorf("failed to create response: %v", err)
	}
	return response, nil
}

// CreateErrorResponse 创建错误响应
func (h *BaseHandler) CreateErrorResponse(id interface{}, code int, message string, data interface{}) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, &jsonrpc.Error{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// CreateInvalidParamsResponse 创建无效参数响应
func (h *BaseHandler) CreateInvalidParamsResponse(id interface{}, message string) *jsonrpc.Response {
	return h.CreateErrorResponse(id, jsonrpc.CodeInvalidParams, message, nil)
}

// CreateAppErrorResponse 将应用错误转换为 JSON-RPC 错误响应，钱包错误码原样保留
func (h *BaseHandler) CreateAppErrorResponse(id interface{}, err error) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, apperrors.ConvertToJSONRPC(err))
}

// LogRequest 记录请求日志
func (h *BaseHandler) LogRequest(request *jsonrpc.Request) {
	h.logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
		"params": string(request.Params),
	}).Debug("Processing JSON-RPC request")
}

// LogResponse 记录响应日志
func (h *BaseHandler) LogResponse(request *jsonrpc.Request, response *jsonrpc.Response, err error) {
	fields := logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	}

	switch {
	case err != nil:
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("Request processing failed")
	case response != nil && response.Error != nil:
		fields["error_code"] = response.Error.Code
		fields["error_message"] = response.Error.Message
		h.logger.WithFields(fields).Warn("Request returned error")
	default:
		h.logger.WithFields(fields).Debug("Request processed successfully")
	}
}
