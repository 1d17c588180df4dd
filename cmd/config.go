package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	GatewayShopID    string
	GatewaySecretKey string
	GatewayReturnURL string

	CarrierAccount       string
	CarrierPassword      string
	CarrierSenderCompany string
	CarrierSenderName    string
	CarrierSenderPhone   string

	TelegramBotToken string

	RedisAddr string

	KafkaHost             string
	KafkaStatusEventTopic string

	PaymentTimeout time.Duration
}
