package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/cache"
	"github.com/TicketsPartners/service-tickets/internal/config"
	"github.com/TicketsPartners/service-tickets/internal/database"
	ticketEvents "github.com/TicketsPartners/service-tickets/internal/events"
	"github.com/TicketsPartners/service-tickets/internal/handler"
	"github.com/TicketsPartners/service-tickets/internal/health"
	"github.com/TicketsPartners/service-tickets/internal/kafka"
	"github.com/TicketsPartners/service-tickets/internal/logger"
	"github.com/TicketsPartners/service-tickets/internal/middleware"
	"github.com/TicketsPartners/service-tickets/internal/repository"
)

const serviceName = "service-tickets"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-tickets",
		zap.String("port", cfg.Port),
		zap.Bool("kafka", cfg.KafkaConfig.Enabled()),
		zap.Bool("rate_cache", cfg.RedisConfig.Addr != ""),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
	}
	zapLogger.Info("database migration completed")

	// Background work is cancelled on shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Initialize repositories
	eventRepo := repository.NewGormEventRepository(db)
	ticketRepo := repository.NewGormTicketRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	txManager := database.NewTxManager(db)

	// Initialize Telegram adapter (mock when no token is configured)
	var sender adapter.MessageSender
	var bot *adapter.TelegramAdapter
	if cfg.Telegram.BotToken != "" {
		bot, err = adapter.NewTelegramAdapter(cfg.Telegram.BotToken, cfg.Telegram.AppURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to initialize telegram bot", zap.Error(err))
		}
		sender = bot
	} else {
		sender = adapter.NewMockTelegramAdapter(zapLogger)
	}
	notifier := application.NewNotifier(userRepo, sender, zapLogger)

	// Initialize notification pipeline
	var publisher application.Publisher
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		publisher = ticketEvents.NewKafkaPublisher(kafkaProducer)

		consumerGroupID := cfg.KafkaConfig.GroupPrefix + "notifications"
		notificationConsumer := ticketEvents.NewNotificationConsumer(
			cfg.KafkaConfig.Brokers,
			consumerGroupID,
			notifier,
			zapLogger,
		)
		defer notificationConsumer.Close()

		go func() {
			zapLogger.Info("starting notification consumer")
			if err := notificationConsumer.Start(bgCtx); err != nil {
				if bgCtx.Err() == nil {
					zapLogger.Error("notification consumer failed", zap.Error(err))
				}
			}
		}()
	} else {
		publisher = ticketEvents.NewInlineDispatcher(notifier, zapLogger)
	}

	// Initialize exchange rate provider with optional Redis cache
	priceFeed := adapter.NewCoinGeckoAdapter(cfg.PriceFeed.URL, cfg.PriceFeed.CoinID, cfg.PriceFeed.Timeout, zapLogger)
	var rateCache application.RateCache
	if cfg.RedisConfig.Addr != "" {
		redisClient, err := cache.Connect(bgCtx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password)
		if err != nil {
			zapLogger.Warn("rate cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			rateCache = cache.NewRateCache(redisClient, cfg.PriceFeed.CoinID, cfg.RedisConfig.RateCacheTTL)
		}
	}
	rates := application.NewExchangeRateProvider(priceFeed, rateCache, cfg.PriceFeed.FallbackRate, cfg.PriceFeed.Timeout, zapLogger)

	// Initialize Solana RPC adapter
	chain := adapter.NewSolanaRPCAdapter(cfg.Solana.RPCURL, cfg.Solana.RPCTimeout, zapLogger)
	defer chain.Close()

	// Initialize image store
	images, err := adapter.NewLocalImageStore(cfg.ImageDir, cfg.PublicBaseURL+"/images", zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize image store", zap.Error(err))
	}

	// Initialize application services
	ledger := application.NewPromoLedger(eventRepo, ticketRepo, zapLogger)
	verifier := application.NewPaymentVerifier(ledger, chain, rates, cfg.Solana.Recipient, cfg.PriceFeed.QuoteCurrency, zapLogger)
	issuer := application.NewTicketIssuer(txManager, eventRepo, ticketRepo, ledger, publisher, zapLogger)
	purchaseService := application.NewPurchaseService(
		eventRepo, ticketRepo, ledger, verifier, issuer, rates,
		cfg.Solana.Recipient, cfg.PriceFeed.QuoteCurrency, zapLogger,
	)
	eventService := application.NewEventService(eventRepo, images, publisher, zapLogger)
	userService := application.NewUserService(userRepo, zapLogger)

	// Start Telegram bot command loop
	if bot != nil {
		go func() {
			zapLogger.Info("starting telegram bot listener")
			bot.Listen(bgCtx, userService.HandleCommand)
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/images", cfg.ImageDir)

	// Register API routes
	api := router.Group("/api")
	handler.NewPromoHandler(purchaseService).RegisterRoutes(api)
	handler.NewPurchaseHandler(purchaseService).RegisterRoutes(api)
	handler.NewTicketHandler(purchaseService).RegisterRoutes(api)
	handler.NewEventHandler(eventService).RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-tickets...")

	// Stop consumer and bot
	bgCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-tickets stopped")
}
