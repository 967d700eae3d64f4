package router

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// ForwardHandler 将请求转发给当前连接的钱包 provider
type ForwardHandler struct {
	*BaseHandler
	connector Connector
}

// NewForwardHandler 创建转发处理器
func NewForwardHandler(connector Connector, logger *logrus.Logger) *ForwardHandler {
	return &ForwardHandler{
		BaseHandler: NewBaseHandler("forward_handler", logger),
		connector:   connector,
	}
}

// Handle 处理 JSON-RPC 请求。没有活动连接时返回 4900
func (h *ForwardHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	p := h.connector.ActiveProvider(ctx)
	if p == nil {
		h.logger.WithField("method", request.Method).Debug("No active wallet provider")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.DisconnectedError), nil
	}

	response := h.forward(ctx, p, request)
	h.LogResponse(request, response, nil)
	return response, nil
}

// forward 优先原样转发报文，provider 不支持时退回 Request 调用
func (h *ForwardHandler) forward(ctx context.Context, p provider.Provider, request *jsonrpc.Request) *jsonrpc.Response {
	logger := h.logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	})

	if fwd, ok := p.(provider.Forwarder); ok {
		response, err := fwd.ForwardRequest(ctx, request)
		if err != nil {
			logger.WithError(err).Warn("Wallet provider transport error")
			return providerErrorResponse(request.ID, err)
		}
		return response
	}

	result, err := p.Request(ctx, request.Method, request.Params)
	if err != nil {
		logger.WithError(err).Debug("Wallet provider returned error")
		return providerErrorResponse(request.ID, err)
	}
	response, err := jsonrpc.NewResponse(request.ID, result)
	if err != nil {
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
	}
	return response
}

// providerErrorResponse 钱包返回的 JSON-RPC 错误原样透传，其余错误转换为 provider 错误
func providerErrorResponse(id interface{}, err error) *jsonrpc.Response {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return jsonrpc.NewErrorResponse(id, rpcErr)
	}
	return jsonrpc.NewErrorResponse(id, apperrors.NewConverter().FromProvider(err).ToJSONRPCError())
}

// ActiveForwarder 返回支持批量转发的活动 provider
func (h *ForwardHandler) ActiveForwarder(ctx context.Context) (provider.Forwarder, bool) {
	fwd, ok := h.connector.ActiveProvider(ctx).(provider.Forwarder)
	return fwd, ok
}
