package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"trading-chart-go/internal/config"
	"trading-chart-go/internal/database"
	"trading-chart-go/internal/logger"
	"trading-chart-go/internal/marketdata"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize market-data REST client
	client := marketdata.NewRestClient(&cfg.MarketData, log)
	if _, err := client.GetServerTime(); err != nil {
		log.Fatal("Failed to reach market-data API", zap.Error(err))
	}
	log.Info("Connected to market-data API", zap.String("base_url", cfg.MarketData.BaseURL))

	symbol := cfg.Backtest.Symbol
	bars, err := client.GetDailyBars(symbol, cfg.MarketData.Limit)
	if err != nil {
		log.Fatal("Failed to fetch daily bars", zap.String("symbol", symbol), zap.Error(err))
	}

	loader := marketdata.NewLoader(db, log)
	saved, err := loader.SaveBars(symbol, bars)
	if err != nil {
		log.Fatal("Failed to store daily bars", zap.String("symbol", symbol), zap.Error(err))
	}

	log.Info("Import complete",
		zap.String("symbol", symbol),
		zap.Int("fetched", len(bars)),
		zap.Int("new", saved))
}
