package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/adapters/out/postgres/paymentrepo"
	"fulfillment/internal/adapters/out/postgres/shipmentrepo"
	"fulfillment/internal/jobs"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs, logger)

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		logger.Error("Failed to build composition root", "error", err)
		os.Exit(1)
	}

	jobManager := jobs.NewJobManager(
		app.CreateSweepPendingPaymentsCommandHandler(),
		configs.PaymentTimeout,
		app.CreatePollShipmentsCommandHandler(),
		app.CreateDispatchOutboxCommandHandler(),
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		logger.Error("Failed to start background jobs", "error", err)
		os.Exit(1)
	}

	e := newWebServer(app, logger)
	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			logger.Error("Web server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Web server shutdown failed", "error", err)
	}

	jobManager.StopAll()
	if err := app.Close(); err != nil {
		logger.Error("Closing outbound resources failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		GatewayShopID:    goDotEnvVariable("YOOKASSA_SHOP_ID"),
		GatewaySecretKey: goDotEnvVariable("YOOKASSA_SECRET_KEY"),
		GatewayReturnURL: goDotEnvVariable("PAYMENT_RETURN_URL"),

		CarrierAccount:       goDotEnvVariable("CDEK_ACCOUNT"),
		CarrierPassword:      goDotEnvVariable("CDEK_SECURE_PASSWORD"),
		CarrierSenderCompany: goDotEnvVariable("CDEK_SENDER_COMPANY"),
		CarrierSenderName:    goDotEnvVariable("CDEK_SENDER_NAME"),
		CarrierSenderPhone:   goDotEnvVariable("CDEK_SENDER_PHONE"),

		TelegramBotToken: goDotEnvVariable("BOT_TOKEN"),

		RedisAddr: goDotEnvVariable("REDIS_ADDR"),

		KafkaHost:             goDotEnvVariable("KAFKA_HOST"),
		KafkaStatusEventTopic: goDotEnvVariable("KAFKA_STATUS_EVENT_TOPIC"),

		PaymentTimeout: paymentTimeout(),
	}
	return config
}

// paymentTimeout reads the pending payment window, defaulting to ten
// minutes.
func paymentTimeout() time.Duration {
	raw := goDotEnvVariable("PAYMENT_TIMEOUT")
	if raw == "" {
		return 10 * time.Minute
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid PAYMENT_TIMEOUT: %v", err)
	}
	return timeout
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustConnectDB(configs cmd.Config, logger *slog.Logger) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&paymentrepo.AttemptDTO{},
		&shipmentrepo.RequestDTO{},
		&outboxrepo.MessageDTO{},
	)
	if err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	return gormDB
}

func newWebServer(app cmd.CompositionRoot, logger *slog.Logger) *echo.Echo {
	e := echo.New()

	server := httpin.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateStartPaymentCommandHandler(),
		app.CreateConfirmPaymentCommandHandler(),
		app.CreateAssembleOrderCommandHandler(),
		app.CreateRequestShipmentCommandHandler(),
		app.CreateArchiveOrderCommandHandler(),
		app.CreateGetOrderStatusQueryHandler(),
		app.CreateGetOrdersByStatusQueryHandler(),
		logger,
	)
	server.RegisterRoutes(e)

	return e
}
