package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/api/handlers"
	"github.com/manasa-ma/digital-signature-app/internal/api/middleware"
	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/store"
	"github.com/manasa-ma/digital-signature-app/pkg/metrics"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.Collector
	authHandler    *handlers.AuthHandler
	docHandler     *handlers.DocumentHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

func NewRouter(
	logger *zap.Logger,
	collector *metrics.Collector,
	tokenService *services.TokenService,
	documentService *services.DocumentService,
	users store.UserStore,
	maxUploadSize int64,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(reqMiddleware.LoginAttemptMiddleware())

	authHandler := handlers.NewAuthHandler(users, tokenService, logger)
	docHandler := handlers.NewDocumentHandler(documentService, maxUploadSize, logger)

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        collector,
		authHandler:    authHandler,
		docHandler:     docHandler,
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "digital-signature-app"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	auth := r.engine.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.GET("/profile", r.authMiddleware.RequireAuth(), r.authHandler.Profile)
	}

	documents := r.engine.Group("/documents")
	documents.Use(r.authMiddleware.RequireAuth())
	{
		documents.POST("/upload", r.docHandler.Upload)
		documents.GET("", r.docHandler.List)
		documents.GET("/:id", r.docHandler.Get)
		documents.POST("/:id/fields", r.docHandler.AddField)
		documents.POST("/:id/sign", r.docHandler.Sign)
		documents.POST("/:id/finalize", r.docHandler.Finalize)
		documents.POST("/:id/reject", r.docHandler.Reject)
		documents.GET("/:id/download", r.docHandler.Download)
		documents.DELETE("/:id", r.docHandler.Delete)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
