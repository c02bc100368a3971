package main

import (
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading-chart-go/internal/backtest"
	"trading-chart-go/internal/config"
	"trading-chart-go/internal/database"
	"trading-chart-go/internal/logger"
	"trading-chart-go/internal/marketdata"
	"trading-chart-go/internal/models"
	"trading-chart-go/internal/strategy"
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
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Load price history
	loader := marketdata.NewLoader(db, log)
	bars, err := loader.LoadBars(cfg.Backtest.Symbol)
	if err != nil {
		log.Fatal("Failed to load price history", zap.Error(err))
	}

	runner, err := strategy.NewRunner(log, bars, strategy.Config{
		InitialCapital: cfg.Backtest.InitialCapital,
		CommissionRate: cfg.Backtest.CommissionRate,
		Slippage:       cfg.Backtest.Slippage,
		WarmupBars:     cfg.Backtest.WarmupBars,
	})
	if err != nil {
		log.Fatal("Failed to create strategy runner", zap.Error(err))
	}

	if cfg.Optimizer.Enabled {
		runOptimizer(log, db, runner, &cfg)
	} else {
		runStrategy(log, db, runner, &cfg)
	}

	log.Info("Backtest complete.")
}

// runStrategy executes the configured single strategy, logs its metrics and
// archives the closed trades.
func runStrategy(log *zap.Logger, db *gorm.DB, runner *strategy.Runner, cfg *config.Config) {
	var strat strategy.Strategy
	switch cfg.Backtest.Strategy {
	case "indicator":
		strat = &strategy.IndicatorStrategy{
			Rules:        strategy.IndicatorRules{MACrossover: true},
			PositionSize: cfg.Backtest.PositionSize,
		}
	default:
		strat = &strategy.PatternStrategy{
			Patterns:            cfg.Backtest.Patterns,
			PositionSize:        cfg.Backtest.PositionSize,
			ConfidenceThreshold: cfg.Backtest.ConfidenceThreshold,
		}
	}

	log.Info("Running strategy",
		zap.String("strategy", strat.Name()),
		zap.String("symbol", cfg.Backtest.Symbol),
		zap.Strings("patterns", cfg.Backtest.Patterns))

	result, err := strat.Run(runner)
	if err != nil {
		log.Fatal("Strategy run failed", zap.Error(err))
	}

	logMetrics(log, result.Metrics)

	for i := range result.Trades {
		t := &result.Trades[i]
		record := models.TradeRecord{
			Symbol:     cfg.Backtest.Symbol,
			Side:       t.Side.String(),
			EntryDate:  t.EntryDate,
			ExitDate:   t.ExitDate,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			Commission: t.Commission,
			PnL:        t.PnL(),
			ReturnPct:  t.ReturnPct(),
		}
		if err := db.Create(&record).Error; err != nil {
			log.Error("Failed to save trade record", zap.Error(err))
		}
	}
	log.Info("Archived closed trades", zap.Int("count", len(result.Trades)))
}

// runOptimizer sweeps pattern combinations, logs the leaders and persists
// the full ranking.
func runOptimizer(log *zap.Logger, db *gorm.DB, runner *strategy.Runner, cfg *config.Config) {
	ranked := runner.OptimizePatternCombinations(
		cfg.Optimizer.MinPatterns,
		cfg.Optimizer.MaxPatterns,
		cfg.Optimizer.Workers,
	)

	topN := cfg.Optimizer.TopN
	if topN <= 0 || topN > len(ranked) {
		topN = len(ranked)
	}
	for i := 0; i < topN; i++ {
		r := ranked[i]
		log.Info("Ranked combination",
			zap.Int("rank", i+1),
			zap.String("patterns", r.PatternNames()),
			zap.Int("trades", r.TotalTrades),
			zap.Float64("total_return_pct", r.TotalReturn),
			zap.Float64("win_rate_pct", r.WinRate),
			zap.String("profit_factor", formatProfitFactor(r.ProfitFactor)),
			zap.Float64("max_drawdown_pct", r.MaxDrawdown))
	}

	for _, r := range ranked {
		row := models.OptimizationResult{
			Symbol:       cfg.Backtest.Symbol,
			Patterns:     r.PatternNames(),
			NumPatterns:  r.NumPatterns,
			TotalTrades:  r.TotalTrades,
			WinRate:      r.WinRate,
			TotalReturn:  r.TotalReturn,
			SharpeRatio:  r.SharpeRatio,
			MaxDrawdown:  r.MaxDrawdown,
			ProfitFactor: sanitizeProfitFactor(r.ProfitFactor),
		}
		if err := db.Create(&row).Error; err != nil {
			log.Error("Failed to save optimization result", zap.Error(err))
		}
	}
	log.Info("Persisted optimization results", zap.Int("count", len(ranked)))
}

func logMetrics(log *zap.Logger, m backtest.Metrics) {
	log.Info("Performance metrics",
		zap.Int("total_trades", m.TotalTrades),
		zap.Int("winning_trades", m.WinningTrades),
		zap.Int("losing_trades", m.LosingTrades),
		zap.Float64("win_rate_pct", m.WinRate),
		zap.Float64("avg_win", m.AvgWin),
		zap.Float64("avg_loss", m.AvgLoss),
		zap.String("profit_factor", formatProfitFactor(m.ProfitFactor)),
		zap.Float64("total_return_pct", m.TotalReturn),
		zap.Float64("sharpe_ratio", m.SharpeRatio),
		zap.Float64("max_drawdown_pct", m.MaxDrawdown))
}

// formatProfitFactor renders the no-losing-trades case readably.
func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}

// sanitizeProfitFactor keeps +Inf out of the database; -1 marks a run with
// no losing trades.
func sanitizeProfitFactor(pf float64) float64 {
	if math.IsInf(pf, 1) {
		return -1
	}
	return pf
}
