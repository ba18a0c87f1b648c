package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
	"github.com/imrishuroy/go-salon-bookings/internal/bookingclient"
	"github.com/imrishuroy/go-salon-bookings/internal/cart"
	"github.com/imrishuroy/go-salon-bookings/internal/checkout"
	"github.com/imrishuroy/go-salon-bookings/internal/config"
	"github.com/imrishuroy/go-salon-bookings/internal/handlers"
	"github.com/imrishuroy/go-salon-bookings/internal/logger"
	"github.com/imrishuroy/go-salon-bookings/internal/storage"
)

func newCartStorage(ctx context.Context, cfg config.Config, clients *aws.AWSClients) (cart.Storage, error) {
	switch cfg.CartStorage {
	case config.CartStorageRedis:
		client, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return storage.NewRedis(client, cfg.CartTTL), nil
	case config.CartStorageDynamoDB:
		return storage.NewDynamo(clients.DynamoDB, cfg.CartTable, cfg.CartTTL), nil
	default:
		return storage.NewMemory(), nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		lg.Fatal("failed to init aws clients", zap.Error(err))
	}

	cartStorage, err := newCartStorage(ctx, cfg, clients)
	if err != nil {
		lg.Fatal("failed to init cart storage", zap.String("backend", cfg.CartStorage), zap.Error(err))
	}

	submitter := bookingclient.New(cfg.BookingAPIURL, lg.Named("bookingclient")).WithTimeout(cfg.BookingTimeout)
	manager := checkout.NewManager(cartStorage, submitter, time.Now, lg.Named("checkout")).
		WithIdleTimeout(cfg.SessionIdleTimeout)

	r := handlers.NewRouter(handlers.RouterConfig{
		Logger:            lg.Named("http"),
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Checkout:          manager,
		Bookings: &handlers.BookingsConfig{
			DynamoDBClient:   clients.DynamoDB,
			SQSClient:        clients.SQS,
			Metrics:          aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace),
			IdempotencyTable: cfg.IdempotencyTable,
			BookingsTable:    cfg.BookingsTable,
			QueueURL:         cfg.QueueURL,
			TTLWindow:        cfg.IdempotencyTTL,
		},
	})

	if !cfg.RunLocal {
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lg.Info("starting local server", zap.String("addr", srv.Addr), zap.String("cart_storage", cfg.CartStorage))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
}
