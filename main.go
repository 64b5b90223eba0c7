package main

import (
	"context"
	"log"

	"github.com/Aaenoor/eco-market-backend/config"
	"github.com/Aaenoor/eco-market-backend/controllers"
	"github.com/Aaenoor/eco-market-backend/database"
	"github.com/Aaenoor/eco-market-backend/gateway"
	"github.com/Aaenoor/eco-market-backend/middleware"
	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/repository"
	"github.com/Aaenoor/eco-market-backend/routes"
	"github.com/Aaenoor/eco-market-backend/sender"
	"github.com/Aaenoor/eco-market-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[EcoMarket] failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// Stores: Mongo for the storefront documents, Postgres for the payment
	// audit rows, Redis for the execution idempotency guard.
	mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer database.CloseMongo(ctx)

	pgDB, err := database.ConnectPostgres(cfg, &models.Payment{})
	if err != nil {
		logger.Fatal("Postgres connection failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}

	billRepo := repository.NewMongoBillRepository(mongoDB)
	orderRepo := repository.NewMongoOrderRepository(mongoDB)
	historyRepo := repository.NewMongoOrderHistoryRepository(mongoDB)
	productRepo := repository.NewMongoProductRepository(mongoDB)
	paymentRepo := repository.NewGormPaymentRepository(pgDB)
	idemStore := repository.NewRedisIdempotencyStore(redisClient)

	payPal := gateway.NewPayPalClient(
		cfg.PayPalClientID,
		cfg.PayPalClientSecret,
		cfg.PayPalMode,
		cfg.PayPalReturnBase,
		cfg.GatewayTimeout,
	)

	smtpSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		logger.Fatal("SMTP sender setup failed", zap.Error(err))
	}

	notifier, err := services.NewEmailNotifier(smtpSender, cfg.EmailNotify, "templates/emails", logger)
	if err != nil {
		logger.Fatal("Notifier setup failed", zap.Error(err))
	}

	checkoutSvc := services.NewCheckoutService(
		billRepo, paymentRepo, historyRepo, idemStore, payPal, notifier, logger,
	)
	orderSvc := services.NewOrderService(orderRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.LoadHTMLGlob("templates/*.html")
	r.Static("/uploads", cfg.UploadDir)

	routes.RegisterRoutes(r,
		&controllers.CheckoutController{Checkout: checkoutSvc, History: historyRepo, Logger: logger},
		&controllers.OrderController{Orders: orderSvc, Logger: logger},
		&controllers.ProductController{Repo: productRepo, UploadDir: cfg.UploadDir, Logger: logger},
	)

	logger.Info("EcoMarket backend running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
