package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Oracle   OracleConfig
	Solana   SolanaConfig
	Push     PushConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret   string
	WorkerToken string
	FrontendURL string
}

// OracleConfig holds price oracle settings
type OracleConfig struct {
	BaseURL           string
	StablecoinAddress string
}

// SolanaConfig holds chain client settings
type SolanaConfig struct {
	Network                string
	AuctionProgramID       string
	ServerWalletPrivateKey string
}

// PushConfig holds the notification dispatcher endpoint
type PushConfig struct {
	Endpoint string
	APIKey   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "auction_house"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			WorkerToken: getEnv("WORKER_TOKEN", ""),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		Oracle: OracleConfig{
			BaseURL:           getEnv("ORACLE_URL", "https://api.coingecko.com/api/v3"),
			StablecoinAddress: getEnv("STABLECOIN_ADDRESS", ""),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			AuctionProgramID:       getEnv("AUCTION_PROGRAM_ID", ""),
			ServerWalletPrivateKey: getEnv("SERVER_WALLET_PRIVATE_KEY", ""),
		},
		Push: PushConfig{
			Endpoint: getEnv("PUSH_ENDPOINT", ""),
			APIKey:   getEnv("PUSH_API_KEY", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.WorkerToken == "" {
		return nil, fmt.Errorf("WORKER_TOKEN is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
