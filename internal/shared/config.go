package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	SMSGatewayURL string
	SMSAPIKey     string
	SMSRPS        int
	SMSWorkers    int

	KafkaBrokers    string // empty = audit goes to MySQL only
	KafkaAuditTopic string

	CacheTTL time.Duration
	OTPTTL   time.Duration
}

func Load() Config {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ievolve?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		SMSGatewayURL: env("SMS_GATEWAY_URL", ""),
		SMSAPIKey:     env("SMS_API_KEY", ""),
		SMSRPS:        atoi("SMS_RPS", 5),
		SMSWorkers:    atoi("SMS_WORKERS", 8),

		KafkaBrokers:    env("KAFKA_BROKERS", ""),
		KafkaAuditTopic: env("KAFKA_AUDIT_TOPIC", "ievolve.audit"),

		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		OTPTTL:   time.Duration(atoi("OTP_TTL_SECONDS", 300)) * time.Second,
	}
	if c.SMSGatewayURL == "" {
		log.Warn().Msg("SMS_GATEWAY_URL is empty; notifications will be dropped")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
