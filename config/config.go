package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string
	GinMode string

	DB       DBConfig
	JWT      JWTConfig
	Security SecurityConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Twilio   TwilioConfig
	Reminder ReminderConfig
	Audit    AuditConfig
	Log      LogConfig

	CORSOrigins   []string
	RateLimit     string
	PDFCacheTTL   time.Duration
	SnowflakeNode int64
}

type DBConfig struct {
	Driver string // postgres or sqlite
	URL    string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type SecurityConfig struct {
	BcryptCost int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

type ReminderConfig struct {
	Cron string
	Days []int
}

type AuditConfig struct {
	Backend       string // db or dynamodb
	DynamoDBTable string
	AWSRegion     string
	Endpoint      string
}

type LogConfig struct {
	Level  string
	Format string // json or console
}

// Load reads .env (if present) and the process environment. A config.yaml in
// the working directory is merged underneath the environment when it exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Failed to read config.yaml: %v", err)
		}
	}

	return &Config{
		Port:    v.GetString("PORT"),
		GinMode: v.GetString("GIN_MODE"),
		DB: DBConfig{
			Driver: v.GetString("DB_DRIVER"),
			URL:    v.GetString("DB_URL"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Twilio: TwilioConfig{
			AccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
			PhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
			WhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		},
		Reminder: ReminderConfig{
			Cron: v.GetString("REMINDER_CRON"),
			Days: parseIntList(v.GetString("REMINDER_DAYS")),
		},
		Audit: AuditConfig{
			Backend:       v.GetString("AUDIT_BACKEND"),
			DynamoDBTable: v.GetString("AUDIT_DYNAMODB_TABLE"),
			AWSRegion:     v.GetString("AWS_REGION"),
			Endpoint:      v.GetString("DYNAMODB_ENDPOINT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:     v.GetString("RATE_LIMIT"),
		PDFCacheTTL:   v.GetDuration("PDF_CACHE_TTL"),
		SnowflakeNode: v.GetInt64("SNOWFLAKE_NODE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_EXPIRY_HOURS", 8)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("REMINDER_CRON", "0 8 * * *")
	v.SetDefault("REMINDER_DAYS", "7,5,2,1")
	v.SetDefault("AUDIT_BACKEND", "db")
	v.SetDefault("AUDIT_DYNAMODB_TABLE", "studiocrm_audit_logs")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("RATE_LIMIT", "20-M")
	v.SetDefault("PDF_CACHE_TTL", "24h")
	v.SetDefault("SNOWFLAKE_NODE", 1)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntList(raw string) []int {
	var out []int
	for _, part := range splitList(raw) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			log.Printf("Ignoring invalid reminder offset %q", part)
			continue
		}
		out = append(out, n)
	}
	return out
}
