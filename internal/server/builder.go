package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	ginlogrus "github.com/toorop/gin-logrus"

	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/connection"
	"github.com/mowind/walletrpc-go/internal/metrics"
	"github.com/mowind/walletrpc-go/internal/router"
)

// Dependencies 服务器依赖的组件
type Dependencies struct {
	Controller *connection.Controller
	// RPC 为空时按 Controller 创建默认路由器
	RPC     *router.Router
	Metrics *metrics.Metrics
	// Probe 为空且配置了注入式 provider 时使用 EthProbe
	Probe  ChainProbe
	Logger *logrus.Logger
}

// Builder 服务器构建器
type Builder struct {
	cfg  *config.Config
	deps Dependencies
}

// NewBuilder 创建新的服务器构建器
func NewBuilder(cfg *config.Config, deps Dependencies) *Builder {
	return &Builder{cfg: cfg, deps: deps}
}

// Build 构建服务器
func (b *Builder) Build() *Server {
	b.setGinMode()

	logger := b.deps.Logger
	if logger == nil {
		logger = b.createLogger()
	}

	rpc := b.deps.RPC
	if rpc == nil && b.deps.Controller != nil {
		rpc = router.NewRouterFactory(logger).CreateRouter(b.deps.Controller)
		if b.deps.Metrics != nil {
			rpc.SetRecorder(b.deps.Metrics)
		}
	}

	probe := b.deps.Probe
	if probe == nil && b.cfg.Injected.Enabled() {
		probe = NewEthProbe(b.cfg.Injected.BuildURL())
	}

	s := &Server{
		config:     b.cfg,
		router:     b.createRouter(logger),
		logger:     logger,
		controller: b.deps.Controller,
		rpc:        rpc,
		metrics:    b.deps.Metrics,
		probe:      probe,
	}

	s.setupRoutes()
	return s
}

// setGinMode 设置 gin 模式
func (b *Builder) setGinMode() {
	if b.cfg.Log.Level == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// createRouter 创建 gin 路由器
func (b *Builder) createRouter(logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(CORSMiddleware())

	if b.cfg.Log.Level == config.LogLevelDebug {
		engine.Use(ginlogrus.Logger(logger))
	}

	engine.Use(AuthMiddleware(b.cfg.API.AuthEnabled, b.cfg.API.Secret, b.cfg.API.Whitelist))
	return engine
}

// createLogger 创建日志器
func (b *Builder) createLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(getLogLevel(b.cfg.Log.Level))
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}
