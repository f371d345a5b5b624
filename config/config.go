package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	FrontendURL          string
	PostgresDSN          string
	RedisAddr            string
	RedisPassword        string
	MinioEndpoint        string
	MinioAccessKey       string
	MinioSecretKey       string
	MinioBucket          string
	MinioUseSSL          bool
	AutomationSecret     string
	SnapshotInterval     time.Duration
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	accessExp, _ := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION", "15m"))
	refreshExp, _ := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRATION", "168h"))
	snapshotInterval, _ := time.ParseDuration(getEnv("SNAPSHOT_INTERVAL", "15m"))

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiration:  accessExp,
		JWTRefreshExpiration: refreshExp,
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		PostgresDSN:          getEnv("POSTGRES_DSN", "host=localhost user=doctrack password=doctrack dbname=doctrack port=5432 sslmode=disable"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		MinioEndpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:          getEnv("MINIO_BUCKET", "customer-documents"),
		MinioUseSSL:          getEnv("MINIO_USE_SSL", "false") == "true",
		AutomationSecret:     getEnv("AUTOMATION_SECRET", ""),
		SnapshotInterval:     snapshotInterval,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
