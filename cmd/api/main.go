package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/internal/adapter/handler"
	"github.com/johnquangdev/acta-generator/internal/adapter/repository"
	"github.com/johnquangdev/acta-generator/internal/domain/repositories"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/cache"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/database"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/docx"
	httpmw "github.com/johnquangdev/acta-generator/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/storage"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/templates"
	"github.com/johnquangdev/acta-generator/internal/usecase/acta"
	pkgai "github.com/johnquangdev/acta-generator/pkg/ai"
	"github.com/johnquangdev/acta-generator/pkg/config"
	"github.com/johnquangdev/acta-generator/pkg/jwt"
	"github.com/johnquangdev/acta-generator/pkg/logger"
	pkgvalidator "github.com/johnquangdev/acta-generator/pkg/validator"

	migrate "github.com/rubenv/sql-migrate"
)

// @title           Acta Generator API
// @version         1.0
// @description     Turns meeting transcripts into filled Word actas
// @BasePath        /v1

// @securityDefinitions.apikey  OperatorToken
// @in                          header
// @name                        Authorization
// @description                 Operator JWT as "Bearer <token>", minted with cmd/token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Audit log
	var jobRepo repositories.GenerationJobRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.CloseDB(db)

		// Production deployments manage schema with cmd/migrate
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				zl.Fatal("DB_AUTO_MIGRATE is enabled in production, run cmd/migrate instead")
			}
			n, err := database.Migrate(db, migrate.Up, 0)
			if err != nil {
				zl.Fatal("failed to apply migrations", zap.Error(err))
			}
			zl.Info("migrations applied", zap.Int("count", n))
		}
		jobRepo = repository.NewGenerationJobRepository(db)
	} else {
		zl.Info("audit log disabled, set DB_ENABLED=true to record runs")
	}

	// Archive and template bucket
	var (
		archive acta.Archive
		minio   *storage.MinIOClient
		checks  []handler.HealthCheck
	)
	if cfg.Storage.Enabled {
		minio, err = storage.NewMinIOClient(startCtx, &cfg.Storage)
		if err != nil {
			zl.Fatal("failed to connect to object storage", zap.Error(err))
		}
		archive = minio
		checks = append(checks, handler.HealthCheck{Name: "storage", Check: minio.Ping})
		zl.Info("archiving actas", zap.String("bucket", cfg.Storage.BucketName))
	}

	var templateStore acta.TemplateStore
	switch cfg.Acta.TemplateSource {
	case "minio":
		templateStore = templates.NewMinIOStore(minio, "templates/")
	default:
		templateStore = templates.NewDirStore(cfg.Acta.TemplateDir)
	}

	// Rate limiter
	var guards handler.RouteGuards
	if cfg.RateLimit.PerMinute > 0 {
		var limiter cache.Limiter
		if cfg.Redis.Enabled {
			redisClient, err := cache.NewRedis(startCtx, cfg)
			if err != nil {
				zl.Fatal("failed to connect to redis", zap.Error(err))
			}
			defer redisClient.Close()
			limiter = cache.NewRedisLimiter(redisClient, cfg.RateLimit.PerMinute, cfg.RateLimit.Window)
		} else {
			memLimiter := cache.NewMemoryLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Window)
			defer memLimiter.Close()
			limiter = memLimiter
		}
		guards.RateLimit = httpmw.RateLimit(limiter, zl)
		zl.Info("rate limiting generation",
			zap.Int("limit", cfg.RateLimit.PerMinute),
			zap.Duration("window", cfg.RateLimit.Window),
			zap.Bool("redis", cfg.Redis.Enabled),
		)
	}

	// Run history is for operators only
	if cfg.Auth.Enabled() {
		guards.Operator = httpmw.OperatorAuth(jwt.NewManager(cfg.Auth.OperatorSecret, cfg.Auth.TokenExpiry), zl)
	} else {
		zl.Info("run history routes disabled, set OPERATOR_JWT_SECRET to serve them")
	}

	ipExtractor, err := httpmw.IPExtractor(cfg.Server.TrustedProxies)
	if err != nil {
		zl.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}

	// Extraction model
	completer, err := pkgai.New(startCtx, &cfg.LLM, zl)
	if err != nil {
		zl.Fatal("failed to initialize extraction model", zap.Error(err))
	}

	actaService := acta.NewService(completer, templateStore, docx.NewRenderer(), archive, jobRepo, cfg, zl)
	actaHandler := handler.NewActaHandler(actaService, cfg.Acta.DefaultTemplate, zl)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(zl)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zl.Warn("http.request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zl.Info("http.request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, handler.HeaderRunID, echo.HeaderXRequestID},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	handler.NewRouter(cfg, actaHandler, guards, checks...).Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zl.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("provider", completer.Name()),
			zap.String("model", cfg.LLM.Model),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("server stopped gracefully")
}
