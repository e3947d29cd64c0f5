package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/api"
	"github.com/RoyceAzure/lab/marketplace/internal/config"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/internal/token"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tokenDuration = 24 * time.Hour

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cf := config.GetConfig()

	conn, err := db.GetDbConn(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	unifiedDB := db.NewUnifiedDB(conn)
	if err := unifiedDB.InitMigrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cf.RedisAddr,
		Password: cf.RedisPassword,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	cartRepo := redis_repo.NewCartRepo(redisClient)

	events := producer.NewOrderEventProducer(strings.Split(cf.KafkaBrokers, ","), cf.KafkaEventTopic, logger)
	defer events.Close()

	paymentGateway := gateway.NewPaystackClient(cf.PaystackSecretKey, cf.PaystackBaseURL, logger)
	tokenMaker := token.NewJWTMaker(cf.TokenSecretKey, tokenDuration)

	cartService := service.NewCartService(cartRepo, unifiedDB.ProductRepo)
	services := api.Services{
		User:    service.NewUserService(unifiedDB.UserRepo, tokenMaker),
		Product: service.NewProductService(unifiedDB.ProductRepo, unifiedDB.UserRepo),
		Cart:    cartService,
		Checkout: service.NewCheckoutService(
			cartService,
			cartRepo,
			unifiedDB.UserRepo,
			unifiedDB.OrderRepo,
			unifiedDB.PaymentRepo,
			paymentGateway,
			events,
			cf.CallbackURL,
			logger,
		),
		Order:   service.NewOrderService(unifiedDB.OrderRepo, unifiedDB.UserRepo),
		Payment: service.NewPaymentService(unifiedDB.PaymentRepo, unifiedDB.OrderRepo, paymentGateway, events, logger),
	}

	server := api.NewServer(services, paymentGateway, tokenMaker, logger)

	port := cf.ServerPort
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Engine(),
	}

	go func() {
		logger.Info("Server starting", zap.String("port", port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
