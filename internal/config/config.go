package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Default endpoint for creating payment preferences
const defaultMPAPIURL = "https://api.mercadopago.com/checkout/preferences"

// Config holds the application configuration
type Config struct {
	AppPort       string // Application port
	DBUser        string // Database user
	DBPassword    string // Database password
	DBHost        string // Database host
	DBPort        string // Database port
	DBName        string // Database name
	JWTSecret     string // JWT secret key
	RedisAddr     string // Redis server address
	RedisPass     string // Redis password
	RedisDB       int    // Redis database number
	MPAccessToken string // Mercado Pago access token; empty disables external payment
	MPAPIURL      string // Mercado Pago preference endpoint
	PublicBaseURL string // Base URL the provider redirects back to
	IsProd        bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:       os.Getenv("APP_PORT"),          // Application port
		DBUser:        os.Getenv("DB_USER"),           // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:        os.Getenv("DB_HOST"),           // Database host
		DBPort:        os.Getenv("DB_PORT"),           // Database port
		DBName:        os.Getenv("DB_NAME"),           // Database name
		JWTSecret:     os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:     os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:       redisDB,                        // Redis database number
		MPAccessToken: os.Getenv("MP_ACCESS_TOKEN"),   // Payment provider credential
		MPAPIURL:      os.Getenv("MP_API_URL"),        // Payment provider endpoint
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),   // Callback base URL
		IsProd:        os.Getenv("IS_PROD") == "true", // Is production environment
	}
	if cfg.MPAPIURL == "" {
		cfg.MPAPIURL = defaultMPAPIURL // Fall back to the live endpoint
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.AppPort // Local default
	}
	return cfg
}
