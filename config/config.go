package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL       string
	ServerPort        int
	JWTSecretKey      string
	AdminPasswordHash string

	// Минт значков.
	SolanaNetwork   string // "devnet" или "mainnet"
	MintScriptPath  string
	MintKeypairPath string
	MintTimeout     time.Duration
	MintWorkers     int64

	// Cloudflare R2 для картинок значков.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	scriptPath := os.Getenv("MINT_SCRIPT_PATH")
	if scriptPath == "" {
		scriptPath = "./metaplex/mint_nft.js"
	}

	timeout := 120 * time.Second
	if timeoutStr := os.Getenv("MINT_TIMEOUT_SECONDS"); timeoutStr != "" {
		seconds, err := strconv.Atoi(timeoutStr)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid MINT_TIMEOUT_SECONDS environment variable: %q", timeoutStr)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	workers := int64(4)
	if workersStr := os.Getenv("MINT_WORKERS"); workersStr != "" {
		n, err := strconv.ParseInt(workersStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MINT_WORKERS environment variable: %q", workersStr)
		}
		workers = n
	}

	network := os.Getenv("SOLANA_NETWORK")
	if network == "" {
		network = "devnet"
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		JWTSecretKey:      jwtKey,
		AdminPasswordHash: adminHash,
		SolanaNetwork:     network,
		MintScriptPath:    scriptPath,
		MintKeypairPath:   os.Getenv("MINT_KEYPAIR_PATH"),
		MintTimeout:       timeout,
		MintWorkers:       workers,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
