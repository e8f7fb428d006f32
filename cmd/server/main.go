package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/api"
	"github.com/manasa-ma/digital-signature-app/internal/config"
	"github.com/manasa-ma/digital-signature-app/internal/db"
	"github.com/manasa-ma/digital-signature-app/internal/pdf"
	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/store"
	"github.com/manasa-ma/digital-signature-app/pkg/logger"
	"github.com/manasa-ma/digital-signature-app/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	var (
		documentStore store.DocumentStore
		userStore     store.UserStore
	)
	if cfg.Database.Enabled {
		database, err := db.Initialize(cfg)
		if err != nil {
			zapLogger.Fatal("Failed to initialize database", zap.Error(err))
		}
		documentStore = store.NewGormDocumentStore(database)
		userStore = store.NewGormUserStore(database)
	} else {
		documentStore = store.NewMemoryDocumentStore()
		userStore = store.NewMemoryUserStore()
	}

	blobStore, err := store.NewFSBlobStore(cfg.Storage.Dir)
	if err != nil {
		zapLogger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	auditPath := cfg.Storage.AuditLogPath
	if auditPath == "" {
		auditPath = filepath.Join(cfg.Storage.Dir, "audit.log")
	}
	auditLog, err := services.NewAuditLog(auditPath, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize audit log", zap.Error(err))
	}

	collector := metrics.NewCollector()
	engine := pdf.NewEngine(zapLogger)
	tokenService := services.NewTokenService(cfg.Security.TokenSecret, cfg.Security.TokenTTL, zapLogger)
	documentService := services.NewDocumentService(documentStore, blobStore, engine, auditLog, zapLogger, collector)

	router := api.NewRouter(zapLogger, collector, tokenService, documentService, userStore, cfg.Storage.MaxUploadSize)
	router.SetupRoutes()

	go func() {
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")
	zapLogger.Info("Server gracefully stopped")
}
