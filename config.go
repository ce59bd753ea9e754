package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseguilhermeromano/Pastel360/database"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/sender"
)

const dbSecretName = "pastel360/DB_CREDENTIALS"

// Config holds all environment variables for the API.
type Config struct {
	Env            string
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
	RatePerMinute  int

	DB database.Config

	AWSRegion     string
	AWSEndpoint   string
	AWSUseSecrets bool

	SQSQueueURL   string
	SNSTopicArn   string
	WorkerEnabled bool

	S3Bucket string
	RedisURL string

	SMTP          sender.SMTPConfig
	AppURL        string
	MailAttempts  int
	MailBackoff   time.Duration
	MetricsOn     bool
	CloudWatchLog bool
	LogGroup      string
}

type secretMapGetter interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig loads environment variables into Config and validates them.
// If AWS_USE_SECRETS=true the DB credentials are read from Secrets Manager,
// falling back to env vars on failure.
func LoadConfig(ctx context.Context) (*Config, error) {
	cfg := configFromEnv()

	if cfg.AWSUseSecrets {
		if awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSEndpoint); err == nil {
			applyDBSecret(ctx, cfg, awspkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFromEnv() *Config {
	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		RatePerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 100),

		DB: database.Config{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			DBName:       getEnv("DB_NAME", "pastel360"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			TimeZone:     getEnv("DB_TIMEZONE", "America/Sao_Paulo"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
			Retries:      getInt("DB_CONNECT_RETRIES", 10),
		},

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:   os.Getenv("AWS_ENDPOINT"),
		AWSUseSecrets: getBool("AWS_USE_SECRETS", false),

		SQSQueueURL:   os.Getenv("SQS_QUEUE_URL"),
		SNSTopicArn:   os.Getenv("SNS_ORDER_TOPIC_ARN"),
		WorkerEnabled: getBool("NOTIFICATION_WORKER_ENABLED", true),

		S3Bucket: os.Getenv("S3_BUCKET"),
		RedisURL: os.Getenv("REDIS_URL"),

		SMTP: sender.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("MAIL_FROM"),
		},
		AppURL:        os.Getenv("APP_URL"),
		MailAttempts:  getInt("MAIL_ATTEMPTS", 3),
		MailBackoff:   getDuration("MAIL_BACKOFF", time.Second),
		MetricsOn:     getBool("CLOUDWATCH_METRICS_ENABLED", false),
		CloudWatchLog: getBool("CLOUDWATCH_LOGS_ENABLED", false),
		LogGroup:      getEnv("CLOUDWATCH_LOG_GROUP", "/pastel360/api"),
	}
}

// applyDBSecret overrides DB settings with the keys present in the secret.
func applyDBSecret(ctx context.Context, cfg *Config, sm secretMapGetter) {
	values, err := sm.GetSecretMap(ctx, dbSecretName)
	if err != nil {
		return
	}
	override := func(dst *string, key string) {
		if v := values[key]; v != "" {
			*dst = v
		}
	}
	override(&cfg.DB.User, "username")
	override(&cfg.DB.Password, "password")
	override(&cfg.DB.Host, "host")
	override(&cfg.DB.Port, "port")
	override(&cfg.DB.DBName, "dbname")
}

func (c *Config) validate() error {
	if c.DB.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		return fmt.Errorf("DB_HOST and DB_NAME are required")
	}
	if c.RatePerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(o), "/")); o != "" {
			out = append(out, o)
		}
	}
	return out
}
