package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/connection"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/metrics"
	"github.com/mowind/walletrpc-go/internal/router"
)

// probeTimeout 就绪检查中链ID探测的超时
const probeTimeout = 3 * time.Second

// Server 表示 HTTP 服务器
type Server struct {
	config     *config.Config
	router     *gin.Engine
	server     *http.Server
	logger     *logrus.Logger
	controller *connection.Controller
	rpc        *router.Router
	metrics    *metrics.Metrics
	probe      ChainProbe
}

// New 创建新的 HTTP 服务器
func New(cfg *config.Config, deps Dependencies) *Server {
	return NewBuilder(cfg, deps).Build()
}

// Handler 返回服务器的 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes 设置服务器路由
func (s *Server) setupRoutes() {
	// 健康检查端点
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/ready", s.readyHandler)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// JSON-RPC 端点
	if s.rpc != nil {
		s.router.POST("/rpc", s.jsonRPCHandler)
	}

	if s.controller != nil {
		s.setupAPIRoutes(s.router.Group("/api"))
	}
}

// healthHandler 处理健康检查请求
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// readyHandler 处理就绪检查请求。配置了注入式 provider 时探测其链ID
func (s *Server) readyHandler(c *gin.Context) {
	body := gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if s.probe != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		chainID, err := s.probe.ChainID(ctx)
		if err != nil {
			apperrors.EntryFromContext(c.Request.Context(), s.logger).
				WithError(err).Warn("Injected provider is not reachable")
			body["status"] = "unavailable"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["chainId"] = chainID
	}

	if s.controller != nil {
		body["method"] = s.controller.Manager().GetCurrentMethod()
	}

	c.JSON(http.StatusOK, body)
}

// jsonRPCHandler 处理 JSON-RPC 请求
func (s *Server) jsonRPCHandler(c *gin.Context) {
	entry := apperrors.EntryFromContext(c.Request.Context(), s.logger)
	s.rpc.HandleHTTPRequestWithContext(c.Writer, c.Request, entry)
}

// Start 启动 HTTP 服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.HTTP.Host, s.config.HTTP.Port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"host": s.config.HTTP.Host,
		"port": s.config.HTTP.Port,
	}).Info("Starting HTTP server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return nil
}

// Stop 优雅停止 HTTP 服务器
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Shutting down HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// getLogLevel 将字符串日志级别转换为 logrus.Level
func getLogLevel(level string) logrus.Level {
	switch level {
	case config.LogLevelDebug:
		return logrus.DebugLevel
	case config.LogLevelInfo:
		return logrus.InfoLevel
	case config.LogLevelWarn:
		return logrus.WarnLevel
	case config.LogLevelError:
		return logrus.ErrorLevel
	case config.LogLevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
