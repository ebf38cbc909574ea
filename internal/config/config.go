package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/TicketsPartners/service-tickets/internal/database"
)

// KafkaConfig holds broker settings. An empty broker list disables Kafka.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// RedisConfig holds rate-cache settings. An empty address disables the cache.
type RedisConfig struct {
	Addr         string
	Password     string
	RateCacheTTL time.Duration
}

// TelegramConfig holds bot settings. An empty token selects the logging sender.
type TelegramConfig struct {
	BotToken string
	AppURL   string
}

// SolanaConfig holds the chain endpoint and the merchant wallet.
type SolanaConfig struct {
	RPCURL     string
	Recipient  string
	RPCTimeout time.Duration
}

// PriceFeedConfig holds exchange-rate settings.
type PriceFeedConfig struct {
	URL           string
	CoinID        string
	QuoteCurrency string
	FallbackRate  decimal.Decimal
	Timeout       time.Duration
}

// ServiceConfig holds all configuration for the tickets service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      database.PostgresConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	Telegram      TelegramConfig
	Solana        SolanaConfig
	PriceFeed     PriceFeedConfig
	ImageDir      string
	PublicBaseURL string
}

// Load reads configuration from environment variables and an optional config.yaml.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a ServiceConfig from v after applying defaults and env binding.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	setDefaults(v)
	v.AutomaticEnv()

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	fallback, err := decimal.NewFromString(v.GetString("PRICE_FALLBACK_RATE"))
	if err != nil || !fallback.IsPositive() {
		return nil, fmt.Errorf("PRICE_FALLBACK_RATE must be a positive number, got %q", v.GetString("PRICE_FALLBACK_RATE"))
	}

	recipient := strings.TrimSpace(v.GetString("SOLANA_RECIPIENT"))
	if recipient == "" {
		return nil, errors.New("SOLANA_RECIPIENT is required")
	}
	if _, err := solana.PublicKeyFromBase58(recipient); err != nil {
		return nil, fmt.Errorf("SOLANA_RECIPIENT is not a valid public key: %w", err)
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:         v.GetString("REDIS_ADDR"),
			Password:     v.GetString("REDIS_PASSWORD"),
			RateCacheTTL: v.GetDuration("RATE_CACHE_TTL"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
			AppURL:   v.GetString("TELEGRAM_APP_URL"),
		},
		Solana: SolanaConfig{
			RPCURL:     v.GetString("SOLANA_RPC_URL"),
			Recipient:  recipient,
			RPCTimeout: v.GetDuration("SOLANA_RPC_TIMEOUT"),
		},
		PriceFeed: PriceFeedConfig{
			URL:           v.GetString("PRICE_FEED_URL"),
			CoinID:        v.GetString("PRICE_COIN_ID"),
			QuoteCurrency: v.GetString("PRICE_QUOTE_CURRENCY"),
			FallbackRate:  fallback,
			Timeout:       v.GetDuration("PRICE_FEED_TIMEOUT"),
		},
		ImageDir:      v.GetString("IMAGE_DIR"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", ":3000")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tickets")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "tickets-")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("RATE_CACHE_TTL", 30*time.Second)

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_APP_URL", "")

	v.SetDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	v.SetDefault("SOLANA_RECIPIENT", "")
	v.SetDefault("SOLANA_RPC_TIMEOUT", 10*time.Second)

	v.SetDefault("PRICE_FEED_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("PRICE_COIN_ID", "solana")
	v.SetDefault("PRICE_QUOTE_CURRENCY", "uah")
	v.SetDefault("PRICE_FALLBACK_RATE", "100")
	v.SetDefault("PRICE_FEED_TIMEOUT", 5*time.Second)

	v.SetDefault("IMAGE_DIR", "images/events")
	v.SetDefault("PUBLIC_BASE_URL", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
