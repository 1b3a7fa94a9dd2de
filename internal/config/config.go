package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	ResetTokenExpiry  time.Duration

	// OTPStore selects the code store backend: memory, redis or dynamo.
	OTPStore         string
	OTPTTL           time.Duration
	OTPMaxAttempts   int
	OTPRateLimit     int
	OTPRateWindow    time.Duration
	OTPSweepInterval time.Duration

	RedisAddr     string
	RedisPassword string

	// Mail delivery. Resend wins if RESEND_API_KEY is set, then SMTP if
	// SMTP_HOST is set, otherwise codes are logged (dev only).
	ResendAPIKey string
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	// SNSTopicARN enables marketplace event publishing when non-empty.
	SNSTopicARN string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Categories    string
	Projects      string
	Orders        string
	Payments      string
	Wallets       string
	WalletEntries string
	Messages      string
	Reviews       string
	Files         string
	OTP           string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Categories:    getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
			Projects:      getEnv("DYNAMO_TABLE_PROJECTS", "projects"),
			Orders:        getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Payments:      getEnv("DYNAMO_TABLE_PAYMENTS", "payments"),
			Wallets:       getEnv("DYNAMO_TABLE_WALLETS", "wallets"),
			WalletEntries: getEnv("DYNAMO_TABLE_WALLET_ENTRIES", "wallet_entries"),
			Messages:      getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Reviews:       getEnv("DYNAMO_TABLE_REVIEWS", "reviews"),
			Files:         getEnv("DYNAMO_TABLE_FILES", "files"),
			OTP:           getEnv("DYNAMO_TABLE_OTP", "otp_codes"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "skillshare-files"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		ResetTokenExpiry:  getEnvDuration("RESET_TOKEN_EXPIRY", 15*time.Minute),

		OTPStore:         getEnv("OTP_STORE", "memory"),
		OTPTTL:           getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 3),
		OTPRateLimit:     getEnvInt("OTP_RATE_LIMIT", 3),
		OTPRateWindow:    getEnvDuration("OTP_RATE_WINDOW", time.Minute),
		OTPSweepInterval: getEnvDuration("OTP_SWEEP_INTERVAL", 5*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "noreply@skillshare.dev"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
