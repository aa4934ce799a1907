package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RPCConfig holds configuration for the blockchain RPC client.
type RPCConfig struct {
	Endpoint         string `yaml:"endpoint"`
	RequestTimeoutMs int64  `yaml:"requestTimeoutMs"`
	RateLimit        int    `yaml:"rateLimit"`
	BurstLimit       int    `yaml:"burstLimit"`
}

// RetryConfig holds the attempt budget used around external calls.
type RetryConfig struct {
	MaxAttempts int   `yaml:"maxAttempts"`
	BaseDelayMs int64 `yaml:"baseDelayMs"`
}

// CacheConfig holds TTLs for the in-memory caches.
type CacheConfig struct {
	PortfolioTTLMinutes int `yaml:"portfolioTTLMinutes"`
	PriceTTLMinutes     int `yaml:"priceTTLMinutes"`
	MetadataTTLMinutes  int `yaml:"metadataTTLMinutes"`
}

// PriceSourceConfig holds one market-data provider's endpoint settings.
type PriceSourceConfig struct {
	BaseURL          string `yaml:"baseURL"`
	APIKey           string `yaml:"apiKey"`
	RequestTimeoutMs int64  `yaml:"requestTimeoutMs"`
}

// PriceSourcesConfig groups the ordered market-data providers.
type PriceSourcesConfig struct {
	DexScreener PriceSourceConfig `yaml:"dexScreener"`
	CoinGecko   PriceSourceConfig `yaml:"coinGecko"`
	Solscan     PriceSourceConfig `yaml:"solscan"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	RPC          RPCConfig          `yaml:"rpc"`
	Retry        RetryConfig        `yaml:"retry"`
	Cache        CacheConfig        `yaml:"cache"`
	PriceSources PriceSourcesConfig `yaml:"priceSources"`
}

// Load reads the YAML configuration file from the given path, unmarshals it
// and applies defaults for anything left unset.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// Default returns a Config populated entirely from defaults, used when no
// config file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.RPC.Endpoint == "" {
		cfg.RPC.Endpoint = "https://api.mainnet-beta.solana.com"
		logrus.Infof("RPC.Endpoint not set, defaulting to %s", cfg.RPC.Endpoint)
	}
	if cfg.RPC.RequestTimeoutMs <= 0 {
		cfg.RPC.RequestTimeoutMs = 10000
	}
	if cfg.RPC.RateLimit <= 0 {
		cfg.RPC.RateLimit = 10
	}
	if cfg.RPC.BurstLimit <= 0 {
		cfg.RPC.BurstLimit = 20
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelayMs <= 0 {
		cfg.Retry.BaseDelayMs = 1000
	}

	if cfg.Cache.PortfolioTTLMinutes <= 0 {
		cfg.Cache.PortfolioTTLMinutes = 5
	}
	if cfg.Cache.PriceTTLMinutes <= 0 {
		cfg.Cache.PriceTTLMinutes = 5
	}
	if cfg.Cache.MetadataTTLMinutes <= 0 {
		cfg.Cache.MetadataTTLMinutes = 30
	}

	if cfg.PriceSources.DexScreener.BaseURL == "" {
		cfg.PriceSources.DexScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DexScreener.BaseURL not set, defaulting to %s", cfg.PriceSources.DexScreener.BaseURL)
	}
	if cfg.PriceSources.DexScreener.RequestTimeoutMs <= 0 {
		cfg.PriceSources.DexScreener.RequestTimeoutMs = 10000
	}
	if cfg.PriceSources.CoinGecko.BaseURL == "" {
		cfg.PriceSources.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.PriceSources.CoinGecko.BaseURL)
	}
	if cfg.PriceSources.CoinGecko.RequestTimeoutMs <= 0 {
		cfg.PriceSources.CoinGecko.RequestTimeoutMs = 10000
	}
	if cfg.PriceSources.Solscan.BaseURL == "" {
		cfg.PriceSources.Solscan.BaseURL = "https://public-api.solscan.io"
		logrus.Infof("Solscan.BaseURL not set, defaulting to %s", cfg.PriceSources.Solscan.BaseURL)
	}
	if cfg.PriceSources.Solscan.RequestTimeoutMs <= 0 {
		cfg.PriceSources.Solscan.RequestTimeoutMs = 10000
	}
}
