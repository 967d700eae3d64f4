package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/connection"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
)

// Connector 连接控制器中路由需要的部分
type Connector interface {
	Connect(ctx context.Context) (connection.State, error)
	State(ctx context.Context) connection.State
	ActiveProvider(ctx context.Context) provider.Provider
}

// AccountsHandler 处理账户相关方法。
// eth_requestAccounts 通过当前连接方式发起连接，eth_accounts 只读取当前状态。
type AccountsHandler struct {
	*BaseHandler
	connector Connector
}

// NewAccountsHandler 创建账户处理器
func NewAccountsHandler(connector Connector, logger *logrus.Logger) *AccountsHandler {
	return &AccountsHandler{
		BaseHandler: NewBaseHandler("accounts", logger),
		connector:   connector,
	}
}

// Methods 返回处理器支持的方法
func (h *AccountsHandler) Methods() []string {
	return []string{provider.MethodRequestAccounts, provider.MethodAccounts}
}

// Handle 处理 JSON-RPC 请求
func (h *AccountsHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	if _, err := h.ValidateParams(request.Params, 0); err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}

	var response *jsonrpc.Response
	var err error
	switch request.Method {
	case provider.MethodRequestAccounts:
		response, err = h.requestAccounts(ctx, request)
	case provider.MethodAccounts:
		response, err = h.CreateSuccessResponse(request.ID, accountsOf(h.connector.State(ctx)))
	default:
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFoundError), nil
	}

	h.LogResponse(request, response, err)
	return response, err
}

// requestAccounts 发起连接并返回账户
func (h *AccountsHandler) requestAccounts(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	state, err := h.connector.Connect(ctx)
	if err != nil {
		return h.CreateAppErrorResponse(request.ID, err), nil
	}
	return h.CreateSuccessResponse(request.ID, accountsOf(state))
}

// accountsOf 返回状态中的账户列表，未连接时为空数组
func accountsOf(state connection.State) []string {
	if !state.Connected {
		return []string{}
	}
	return []string{state.Address}
}
