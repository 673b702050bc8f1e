package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	APIClientKey      string `mapstructure:"API_CLIENT_KEY"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisRunStoreDB int    `mapstructure:"REDIS_RUN_STORE_DB"`
	RedisAdvisorDB  int    `mapstructure:"REDIS_ADVISOR_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking portal (the venue's scheduling site).
	PortalURL      string `mapstructure:"PORTAL_URL"`
	PortalEmail    string `mapstructure:"PORTAL_EMAIL"`
	PortalPassword string `mapstructure:"PORTAL_PASSWORD"`
	PortalTimezone string `mapstructure:"PORTAL_TIMEZONE"`

	// Venue grid parameters.
	CourtCount       int `mapstructure:"COURT_COUNT"`
	OpeningMinute    int `mapstructure:"OPENING_MINUTE"`    // minutes from midnight, e.g. 480 for 8:00 AM
	ClosingMinute    int `mapstructure:"CLOSING_MINUTE"`    // minutes from midnight, e.g. 1260 for 9:00 PM
	SlotIncrementMin int `mapstructure:"SLOT_INCREMENT_MIN"`

	// Browser driver.
	ChromeHeadless   bool `mapstructure:"CHROME_HEADLESS"`
	NavigateTimeout  int  `mapstructure:"NAVIGATE_TIMEOUT_SEC"`
	InteractionDelay int  `mapstructure:"INTERACTION_DELAY_MS"`

	// Matching.
	MaxAlternatives    int `mapstructure:"MAX_ALTERNATIVES"`
	DefaultDurationMin int `mapstructure:"DEFAULT_DURATION_MIN"`

	// Run history retention.
	RunRetentionDays int `mapstructure:"RUN_RETENTION_DAYS"`

	// Gemini advisory (optional; empty key disables the advisor).
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Google Cloud service account for speech-to-text.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Firebase service account for outcome pushes (optional).
	FirebaseServiceAccountFile string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_RUN_STORE_DB", 0)
	viper.SetDefault("REDIS_ADVISOR_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("PORTAL_URL", "https://ocbadminton.skedda.com/booking")
	viper.SetDefault("PORTAL_EMAIL", "")
	viper.SetDefault("PORTAL_PASSWORD", "")
	viper.SetDefault("PORTAL_TIMEZONE", "America/Los_Angeles")
	viper.SetDefault("COURT_COUNT", 8)
	viper.SetDefault("OPENING_MINUTE", 480)
	viper.SetDefault("CLOSING_MINUTE", 1260)
	viper.SetDefault("SLOT_INCREMENT_MIN", 30)
	viper.SetDefault("CHROME_HEADLESS", true)
	viper.SetDefault("NAVIGATE_TIMEOUT_SEC", 30)
	viper.SetDefault("INTERACTION_DELAY_MS", 500)
	viper.SetDefault("MAX_ALTERNATIVES", 5)
	viper.SetDefault("DEFAULT_DURATION_MIN", 60)
	viper.SetDefault("RUN_RETENTION_DAYS", 90)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("FIREBASE_SERVICE_ACCOUNT_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
