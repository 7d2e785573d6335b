package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBDriver        string
	DBUrl           string
	JWTSecret       string
	JWTTTL          time.Duration
	LogLevel        string
	StorageDriver   string
	UploadDir       string
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	PublicBaseURL   string
	MaxUploadBytes  int64
	RateLimit       float64
	RateBurst       int
	AdminEmail      string
	AdminUsername   string
	AdminPassword   string
	ShutdownTimeout time.Duration
}

const defaultJWTSecret = "default-secret-key-change-in-production"

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DBUrl:           os.Getenv("DB_URL"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:          getDuration("JWT_TTL", time.Hour),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StorageDriver:   getEnv("STORAGE_DRIVER", "local"),
		UploadDir:       getEnv("UPLOAD_DIR", "public/images/products"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", os.Getenv("AWS_REGION")),
		S3Prefix:        os.Getenv("S3_PREFIX"),
		PublicBaseURL:   os.Getenv("PUBLIC_BASE_URL"),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", 5<<20),
		RateLimit:       getFloat("RATE_LIMIT", 10),
		RateBurst:       int(getInt64("RATE_BURST", 20)),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
