package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// RouterFactory 路由器工厂，简化路由器的创建和配置
type RouterFactory struct {
	logger *logrus.Logger
}

// NewRouterFactory 创建路由器工厂
func NewRouterFactory(logger *logrus.Logger) *RouterFactory {
	return &RouterFactory{
		logger: logger,
	}
}

// CreateRouter 创建完整配置的路由器。
// 账户方法由连接控制器处理，其余方法转发给当前连接的钱包
func (f *RouterFactory) CreateRouter(connector Connector) *Router {
	router := NewRouter(f.logger)

	accounts := NewAccountsHandler(connector, f.logger)
	for _, method := range accounts.Methods() {
		if err := router.Register(&MethodHandler{
			handler: accounts,
			method:  method,
		}); err != nil {
			f.logger.WithError(err).WithField("method", method).Error("Failed to register handler")
		}
	}

	router.SetDefaultHandler(NewForwardHandler(connector, f.logger))
	return router
}

// MethodHandler 包装处理器，使其以指定方法名注册
type MethodHandler struct {
	handler Handler
	method  string
}

// Method 返回方法名
func (m *MethodHandler) Method() string {
	return m.method
}

// Handle 处理请求
func (m *MethodHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return m.handler.Handle(ctx, request)
}
