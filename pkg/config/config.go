package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	ServerPort int

	DatabaseURL    string
	DatabaseDriver string
	MigrateOnStart bool

	JWTAccessSecret []byte
	CSRFEnabled     bool
	CookieSecure    bool

	KafkaBrokers      []string
	NotifyTopic       string
	NotifyGroupID     string
	NotifyDelay       time.Duration
	NotifyMaxAttempts int

	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	SMTPFrom       string
	SMTPSSL        bool
	MailRatePerSec float64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ImportLockTTL time.Duration

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	FeedTimeout  time.Duration
	FeedMaxBytes int64
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shop-orders"),
		Env:         EnvDefault("ENV", "development"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: EnvDefault("DB_DRIVER", "pgx"),
		MigrateOnStart: EnvBoolDefault("DB_MIGRATE", true),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		CSRFEnabled:     EnvBoolDefault("CSRF_ENABLED", true),
		CookieSecure:    EnvBoolDefault("COOKIE_SECURE", false),

		KafkaBrokers:      CSV(os.Getenv("KAFKA_BROKERS")),
		NotifyTopic:       EnvDefault("NOTIFY_TOPIC", "order_notifications"),
		NotifyGroupID:     EnvDefault("NOTIFY_GROUP_ID", "shop-orders-notifier"),
		NotifyDelay:       EnvDurationDefault("NOTIFY_DELAY", 5*time.Minute),
		NotifyMaxAttempts: EnvIntDefault("NOTIFY_MAX_ATTEMPTS", 3),

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       EnvIntDefault("SMTP_PORT", 465),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
		SMTPSSL:        EnvBoolDefault("SMTP_SSL", true),
		MailRatePerSec: EnvFloatDefault("MAIL_RATE_PER_SEC", 5),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),
		ImportLockTTL: EnvDurationDefault("IMPORT_LOCK_TTL", 2*time.Minute),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "product_infos"),

		FeedTimeout:  EnvDurationDefault("FEED_TIMEOUT", 30*time.Second),
		FeedMaxBytes: int64(EnvIntDefault("FEED_MAX_BYTES", 10<<20)),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts Go durations ("90s", "5m").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
