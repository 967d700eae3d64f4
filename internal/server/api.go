package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mowind/walletrpc-go/internal/catalog"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/provider"
	"github.com/mowind/walletrpc-go/internal/utils"
)

// setMethodRequest PUT /api/connection/method 的请求体
type setMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// setProviderRequest PUT /api/connection/provider 的请求体，endpoint 为空表示清除
type setProviderRequest struct {
	Endpoint string `json:"endpoint"`
}

// setupAPIRoutes 注册连接控制和方法目录接口
func (s *Server) setupAPIRoutes(api *gin.RouterGroup) {
	api.GET("/methods", s.listMethodsHandler)

	conn := api.Group("/connection")
	conn.GET("", s.connectionStateHandler)
	conn.PUT("/method", s.setMethodHandler)
	conn.POST("/connect", s.connectHandler)
	conn.POST("/disconnect", s.disconnectHandler)
	conn.PUT("/provider", s.setProviderHandler)
	conn.GET("/chain", s.chainHandler)

	api.GET("/catalog", s.catalogHandler)
	api.GET("/catalog/:id", s.catalogMethodHandler)
	api.GET("/catalog/:id/tests/:test", s.catalogTestHandler)

	api.GET("/events", s.eventsHandler)
}

// respondError 按错误类型返回 HTTP 状态码和错误体
func (s *Server) respondError(c *gin.Context, err error, extra gin.H) {
	appErr := apperrors.ConvertError(err)
	body := gin.H{
		"error": gin.H{
			"type":    appErr.Type,
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(apperrors.HTTPStatus(appErr), body)
}

// listMethodsHandler 返回支持的连接方式和当前选择
func (s *Server) listMethodsHandler(c *gin.Context) {
	manager := s.controller.Manager()
	c.JSON(http.StatusOK, gin.H{
		"methods": manager.ListMethods(),
		"current": manager.GetCurrentMethod(),
	})
}

// connectionStateHandler 返回当前连接状态
func (s *Server) connectionStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.State(c.Request.Context()))
}

// setMethodHandler 切换连接方式
func (s *Server) setMethodHandler(c *gin.Context) {
	var req setMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.Wrap(err, apperrors.ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Invalid request body"), nil)
		return
	}

	ctx := apperrors.WithOperation(c.Request.Context(), apperrors.OpSwitchMethod)
	method, err := s.controller.Manager().Registry().Parse(req.Method)
	if err == nil {
		err = s.controller.SetMethod(method)
	}
	if err != nil {
		apperrors.EntryFromContext(ctx, s.logger).WithError(err).Warn("Connection method not changed")
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s.controller.State(ctx))
}

// connectHandler 使用当前连接方式建立连接
func (s *Server) connectHandler(c *gin.Context) {
	state, err := s.controller.Connect(c.Request.Context())
	if err != nil {
		s.respondError(c, err, gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}

// disconnectHandler 断开当前连接
func (s *Server) disconnectHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.controller.Disconnect(ctx); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s.controller.State(ctx))
}

// setProviderHandler 直接设置外部钱包 provider 句柄
func (s *Server) setProviderHandler(c *gin.Context) {
	var req setProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.Wrap(err, apperrors.ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Invalid request body"), nil)
		return
	}

	ctx := apperrors.WithOperation(c.Request.Context(), apperrors.OpSetProvider)
	manager := s.controller.Manager()
	if req.Endpoint == "" {
		manager.SetExternalProvider(nil)
		c.JSON(http.StatusOK, gin.H{"provider": nil})
		return
	}

	if !utils.IsHTTPURL(req.Endpoint) {
		s.respondError(c, apperrors.Newf(apperrors.ErrorTypeValidation, jsonrpc.CodeInvalidParams,
			"Invalid provider endpoint %q", req.Endpoint), nil)
		return
	}

	manager.SetExternalProvider(provider.NewHTTPProvider(req.Endpoint))
	apperrors.EntryFromContext(ctx, s.logger).
		WithField("endpoint", req.Endpoint).Info("External wallet provider set")
	c.JSON(http.StatusOK, gin.H{"provider": req.Endpoint})
}

// chainHandler 返回当前连接钱包所在的链ID
func (s *Server) chainHandler(c *gin.Context) {
	ctx := c.Request.Context()
	p := s.controller.ActiveProvider(ctx)
	if p == nil {
		s.respondError(c, apperrors.ErrNoProviderAvailable, nil)
		return
	}

	chainID, err := provider.ChainID(ctx, p)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chainId": chainID})
}

// catalogHandler 返回方法目录，支持按分类、关键字过滤，deprecated=false 时排除废弃方法
func (s *Server) catalogHandler(c *gin.Context) {
	source := catalog.All()
	if category := c.Query("category"); category != "" {
		source = catalog.ByCategory(catalog.Category(strings.ToLower(category)))
	}
	methods := catalog.Filter(source, c.Query("q"))
	if c.Query("deprecated") == "false" {
		kept := methods[:0]
		for _, m := range methods {
			if !m.Deprecated() {
				kept = append(kept, m)
			}
		}
		methods = kept
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": catalog.Categories(),
		"methods":    methods,
	})
}

// catalogMethodHandler 返回单个方法
func (s *Server) catalogMethodHandler(c *gin.Context) {
	m, ok := catalog.Lookup(c.Param("id"))
	if !ok {
		s.respondError(c, apperrors.Newf(apperrors.ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound,
			"Unknown catalog method %q", c.Param("id")), nil)
		return
	}
	c.JSON(http.StatusOK, m)
}

// catalogTestHandler 返回替换为当前账户后的测试参数
func (s *Server) catalogTestHandler(c *gin.Context) {
	state := s.controller.State(c.Request.Context())

	m, t, err := catalog.HydratedTest(c.Param("id"), c.Param("test"), state.Address)
	if err != nil {
		s.respondError(c, apperrors.Wrap(err, apperrors.ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound, err.Error()), nil)
		return
	}
	raw, _ := m.Test(t.ID)
	usesAccount := catalog.UsesAccount(raw.Params)

	request, err := jsonrpc.NewRequest(time.Now().UnixNano(), m.Method, t.Params)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"method":   m.ID,
		"test":     t,
		"request":  request,
		"hydrated": usesAccount && state.Connected,
		"account":  state.Address,
		"kind":     t.Mode.Kind(),
		"action":   t.Mode.Action(),
	})
}
