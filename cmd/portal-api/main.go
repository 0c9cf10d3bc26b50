package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"investor-desk/request-portal-backend/internal/auth"
	"investor-desk/request-portal-backend/internal/config"
	"investor-desk/request-portal-backend/internal/notifications"
	"investor-desk/request-portal-backend/internal/profiles"
	"investor-desk/request-portal-backend/internal/reports"
	"investor-desk/request-portal-backend/internal/reports/dashboard"
	"investor-desk/request-portal-backend/internal/requests"
	"investor-desk/request-portal-backend/internal/timeline"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db_name", cfg.Database.DBName))
	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	// Notifications use gorm on the same pool
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		logger.Fatal("Failed to initialize gorm", zap.Error(err))
	}

	// Authentication
	authService := auth.NewService(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
	authHandler := auth.NewHandler(authService)

	// Request summary, dropped on every status change
	reportsRepo := reports.NewRepository(db)
	summary := dashboard.NewAggregator(reportsRepo, logger, dashboard.AggregatorConfig{
		CacheTTL: cfg.Reports.SummaryCacheTTL,
	})
	defer summary.Stop()

	// Request workflow
	requestsRepo := requests.NewRepository(db)
	requestsService := requests.NewService(requestsRepo, logger, requests.ServiceOptions{
		RetryOnConflict: cfg.Transitions.RetryOnConflict,
		OnTransition:    func(*requests.TransitionResult) { summary.Invalidate() },
	})
	requestsHandler := requests.NewHandler(requestsService, logger)

	// Profiles
	profilesService := profiles.NewService(profiles.NewRepository(db))
	profilesHandler := profiles.NewHandler(profilesService)

	// Notifications
	catalog := notifications.DefaultCopyCatalog()
	notificationsService := notifications.NewService(notifications.NewRepository(gormDB), catalog, logger)
	notificationsHandler := notifications.NewHandler(notificationsService, logger, cfg.Timeline.DefaultLanguage)

	// Timeline
	timelineService := timeline.NewService(timeline.Dependencies{
		Requests:      requestsRepo,
		Events:        requestsRepo,
		Comments:      requestsRepo,
		Notifications: notificationsService,
		Profiles:      profilesService,
		Copy:          catalog,
	}, logger)
	timelineHandler := timeline.NewHandler(timelineService, logger, cfg.Timeline.DefaultLanguage)

	// Reports
	reportsHandler := reports.NewHandler(reports.NewService(reportsRepo, logger), logger)
	summaryHandler := dashboard.NewHandler(summary, logger)

	// Setup Router
	if cfg.Logging.Format == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept-Language, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Report-Rows")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, logger)

	protected := api.Group("", auth.Middleware(authService, logger))
	{
		requestsHandler.RegisterRoutes(protected)
		timelineHandler.RegisterRoutes(protected)
		notificationsHandler.RegisterRoutes(protected)
		profilesHandler.RegisterRoutes(protected)
		reportsHandler.RegisterRoutes(protected)
		summaryHandler.RegisterRoutes(protected)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
