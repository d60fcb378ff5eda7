// Package api реализует REST API редактора объектов поверх gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/objectkit/internal/api/replay"
	"github.com/annel0/objectkit/internal/auth"
	"github.com/annel0/objectkit/internal/editor"
	"github.com/annel0/objectkit/internal/logging"
	"github.com/annel0/objectkit/internal/middleware"
)

// Version версия API, отдаваемая в /api/server
const Version = "v0.1.0"

// RestServer представляет REST API сервер
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	editor     *editor.Service
	replay     *replay.ReplayService
	webhooks   *OutboundWebhookManager
	auth       *AuthConfig
	metrics    *ServerMetrics
	logger     *logging.Logger
	port       int
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     int                     // порт для запуска сервера
	Editor   *editor.Service         // сервис редактора, обязателен
	Replay   *replay.ReplayService   // история изменений, может быть nil
	Webhooks *OutboundWebhookManager // исходящие webhook'и, может быть nil
	Auth     *AuthConfig             // nil отключает авторизацию
	Logger   *logging.Logger

	// Registerer и Gatherer для HTTP-метрик и /metrics; по умолчанию глобальный регистр prometheus.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// AuthConfig пользователи и выпуск токенов для изменяющих маршрутов
type AuthConfig struct {
	Users  auth.UserRepository
	Tokens *auth.TokenIssuer
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == 0 {
		config.Port = 8090
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// otelgin раньше логгера, чтобы trace-id запроса совпадал со span'ом
	router.Use(otelgin.Middleware("objectkit_api"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("objectkit_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:   router,
		editor:   config.Editor,
		replay:   config.Replay,
		webhooks: config.Webhooks,
		auth:     config.Auth,
		metrics:  NewServerMetrics(),
		logger:   config.Logger,
		port:     config.Port,
	}

	server.setupRoutes()
	return server
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	api.GET("/server", rs.handleServerInfo)
	api.GET("/behavior-types", rs.handleBehaviorTypes)
	if rs.auth != nil {
		api.POST("/auth/login", rs.handleLogin)
	}

	// Чтение открыто, изменения требуют токена
	write := rs.jwtMiddleware(false)

	projects := api.Group("/projects")
	{
		projects.GET("", rs.handleListProjects)
		projects.GET("/:project/objects", rs.handleListObjects)
		projects.GET("/:project/document", rs.handleExportDocument)
		projects.PUT("/:project/document", write, rs.handleImportDocument)

		behaviors := projects.Group("/:project/objects/:object/behaviors")
		behaviors.GET("", rs.handleListBehaviors)
		behaviors.POST("", write, rs.handleAddBehavior)
		behaviors.DELETE("/:behavior", write, rs.handleRemoveBehavior)
		behaviors.PATCH("/:behavior", write, rs.handleRenameBehavior)
		behaviors.GET("/:behavior/properties", rs.handleBehaviorProperties)
		behaviors.GET("/:behavior/schema", rs.handleBehaviorSchema)
		behaviors.PUT("/:behavior/properties/:property", write, rs.handleUpdateProperty)
	}

	if rs.replay != nil {
		projects.GET("/:project/history", rs.handleProjectHistory)
		api.GET("/history/stats", rs.handleHistoryStats)
		api.GET("/history/types", rs.handleHistoryTypes)
	}

	if rs.webhooks != nil {
		// Webhook'и содержат секреты подписи, поэтому только для администраторов
		webhooks := api.Group("/webhooks", rs.jwtMiddleware(true))
		webhooks.GET("", rs.handleGetOutboundWebhooks)
		webhooks.POST("", rs.handleCreateOutboundWebhook)
		webhooks.GET("/events", rs.handleGetWebhookEventTypes)
		webhooks.GET("/:id", rs.handleGetOutboundWebhook)
		webhooks.PUT("/:id", rs.handleUpdateOutboundWebhook)
		webhooks.DELETE("/:id", rs.handleDeleteOutboundWebhook)
	}
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := rs.metrics.Snapshot()
	p := rs.editor.Platform()
	info.Platform = p.Name()
	info.BehaviorTypes = len(p.BehaviorTypes())

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

func (rs *RestServer) handleBehaviorTypes(c *gin.Context) {
	ok(c, "Типы поведений", rs.editor.Platform().BehaviorTypes())
}

// Start запускает HTTP сервер; блокируется до Stop или ошибки
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", rs.port),
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rs.logf("🌐 REST API слушает :%d", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	return rs.httpServer.Shutdown(ctx)
}

func (rs *RestServer) logf(format string, args ...interface{}) {
	if rs.logger != nil {
		rs.logger.Info(format, args...)
		return
	}
	logging.Info(format, args...)
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, GenericResponse{Success: false, Message: message})
}

// statusFor переводит ошибку редактора в HTTP-статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrProjectNotFound),
		errors.Is(err, editor.ErrObjectNotFound),
		errors.Is(err, editor.ErrBehaviorNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrBehaviorExists):
		return http.StatusConflict
	case errors.Is(err, editor.ErrInvalidName),
		errors.Is(err, editor.ErrInvalidProperty),
		errors.Is(err, editor.ErrInvalidDocument),
		errors.Is(err, editor.ErrUnknownBehaviorType):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (rs *RestServer) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if rs.logger != nil {
			rs.logger.Error("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		} else {
			logging.Error("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		fail(c, status, "Внутренняя ошибка сервера")
		return
	}
	fail(c, status, err.Error())
}
