package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"defai_checker/internal/action"
	"defai_checker/internal/app/port"
	"defai_checker/internal/app/service"
	"defai_checker/internal/client"
	"defai_checker/internal/infrastructure/configloader"
	"defai_checker/internal/infrastructure/restapi"
	"defai_checker/internal/infrastructure/solana"
	"defai_checker/internal/pkg/cache"
	"defai_checker/internal/pkg/logger"
	"defai_checker/internal/pkg/metrics"
)

func main() {
	atomicLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = atomicLevel
	zapLogger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfgPath := getEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		zapLogger.Warn("Failed to load configuration, continuing with defaults",
			zap.String("path", cfgPath), zap.Error(err))
		cfg = configloader.Default()
	}

	// Apply the configured level and route the global slog output through zap
	// so the whole process logs through one core.
	if parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Logging.Level)); err == nil {
		atomicLevel.SetLevel(parsed)
	} else {
		zapLogger.Warn("Invalid log level in config, keeping info", zap.String("level", cfg.Logging.Level))
	}
	slogHandler := slogzap.Option{Level: logger.ParseLevel(cfg.Logging.Level), Logger: zapLogger}.NewZapHandler()
	logger.UseHandler(slogHandler)

	zapLogger.Info("Configuration loaded",
		zap.String("path", cfgPath),
		zap.String("logLevel", cfg.Logging.Level))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	chainClient := solana.NewClient(
		cfg.RPC.Endpoint,
		cfg.RPC.RateLimit,
		cfg.RPC.BurstLimit,
		time.Duration(cfg.RPC.RequestTimeoutMs)*time.Millisecond,
		zapLogger,
	)
	zapLogger.Info("RPC client initialized", zap.String("endpoint", cfg.RPC.Endpoint))

	appLogger := logger.NewSlogAdapter()
	sources := buildPriceSources(cfg, chainClient, appLogger, zapLogger)

	priceCache := cache.New[float64](time.Duration(cfg.Cache.PriceTTLMinutes) * time.Minute)
	priceService := service.NewTokenPriceService(sources, priceCache, appLogger, collector)
	zapLogger.Info("TokenPriceService initialized", zap.Int("sources", len(sources)))

	portfolioCache := cache.New[service.Run](time.Duration(cfg.Cache.PortfolioTTLMinutes) * time.Minute)
	portfolioService := service.NewPortfolioService(
		chainClient,
		priceService,
		service.NewStaticHistorySource(),
		portfolioCache,
		appLogger,
		collector,
		cfg,
	)
	zapLogger.Info("PortfolioService initialized")

	actionHandler := action.NewHandler(portfolioService, appLogger)
	portfolioHandler := restapi.NewPortfolioHandler(portfolioService, actionHandler)
	router := restapi.SetupRouter(portfolioHandler, registry, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

// buildPriceSources assembles the resolution chain in its fallback order:
// DEX Screener, CoinGecko, Solscan, then on-chain supply metadata.
func buildPriceSources(cfg *configloader.Config, chainClient port.ChainClient, appLogger port.Logger, zapLogger *zap.Logger) []port.PriceSource {
	dexTimeout := time.Duration(cfg.PriceSources.DexScreener.RequestTimeoutMs) * time.Millisecond
	geckoTimeout := time.Duration(cfg.PriceSources.CoinGecko.RequestTimeoutMs) * time.Millisecond
	solscanTimeout := time.Duration(cfg.PriceSources.Solscan.RequestTimeoutMs) * time.Millisecond

	return []port.PriceSource{
		client.NewDexScreenerClient(cfg.PriceSources.DexScreener.BaseURL, dexTimeout, zapLogger),
		client.NewCoinGeckoClient(cfg.PriceSources.CoinGecko.BaseURL, cfg.PriceSources.CoinGecko.APIKey, geckoTimeout, zapLogger),
		client.NewSolscanClient(cfg.PriceSources.Solscan.BaseURL, solscanTimeout, zapLogger),
		service.NewSupplySource(chainClient, appLogger),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
