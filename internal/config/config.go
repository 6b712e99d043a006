package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config reúne toda la configuración del servicio, cargada desde variables
// de entorno (con .env opcional en desarrollo).
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	IABaseURL string

	SessionDriver string // "memory" | "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	CatalogCacheTTL time.Duration

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	S3BucketName string
	AWSRegion    string

	CORSOrigin string
}

func LoadConfig() (*Config, error) {
	// .env es opcional: en despliegue las variables llegan del entorno
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] Sin archivo .env, usando entorno: %v", err)
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tesorosindia"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		IABaseURL: getEnv("IA_BASE_URL", "http://localhost:8000"),

		SessionDriver: getEnv("SESSION_DRIVER", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),

		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 20),

		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Tesoros India"),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", ""),

		S3BucketName: getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}

	if cfg.IABaseURL == "" {
		return nil, fmt.Errorf("IA_BASE_URL es requerido")
	}

	return cfg, nil
}

func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[Config] %s inválido (%q), usando %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[Config] %s inválido (%q), usando %v", key, value, fallback)
		return fallback
	}
	return d
}
