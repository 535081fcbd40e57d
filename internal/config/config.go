package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey   string
	GeminiModel    string
	AIRateInterval time.Duration
	DatabaseURL    string
	HTTPPort       string
	LogLevel       string
	JWTSecret      string
	AppOrigin      string

	StripeSecretKey     string
	StripeWebhookSecret string
	LifetimePriceCents  int

	StorageBackend  string // "local" or "r2"
	StorageDir      string
	R2Endpoint      string
	R2Bucket        string
	R2PublicBaseURL string
	AWSAccessKeyID  string
	AWSSecretKey    string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		AIRateInterval: getEnvAsDuration("AI_RATE_INTERVAL", 2*time.Second),
		DatabaseURL:    getEnv("DATABASE_URL", "carousels.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AppOrigin:      getEnv("APP_ORIGIN", "http://localhost:5173"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		LifetimePriceCents:  getEnvAsInt("LIFETIME_PRICE_CENTS", 2900),

		StorageBackend:  getEnv("STORAGE_BACKEND", "local"),
		StorageDir:      getEnv("STORAGE_DIR", "_output"),
		R2Endpoint:      getEnv("R2_ENDPOINT", ""),
		R2Bucket:        getEnv("R2_BUCKET", ""),
		R2PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set, carousel generation will use the built-in template")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.StorageBackend == "r2" && (AppConfig.R2Endpoint == "" || AppConfig.R2Bucket == "") {
		log.Fatal("R2_ENDPOINT and R2_BUCKET are required when STORAGE_BACKEND=r2")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
