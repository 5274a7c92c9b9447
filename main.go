package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-alert-bot/config"
	"crypto-alert-bot/internal/agent"
	"crypto-alert-bot/internal/binance"
	"crypto-alert-bot/internal/bot"
	"crypto-alert-bot/internal/database"
	"crypto-alert-bot/internal/events"
	"crypto-alert-bot/internal/exchange"
	"crypto-alert-bot/internal/logging"
	"crypto-alert-bot/internal/market"
	"crypto-alert-bot/internal/notification"
	"crypto-alert-bot/internal/persistence"
	"crypto-alert-bot/internal/server"
	"crypto-alert-bot/internal/strategy"
)

// BotAPIWrapper adapts the bot and exchange to the monitoring API.
type BotAPIWrapper struct {
	bot      *bot.Bot
	exchange *exchange.VirtualExchange
	cfg      *config.Config
}

func (w *BotAPIWrapper) Status() server.StatusInfo {
	startedAt := ""
	if t := w.bot.StartedAt(); !t.IsZero() {
		startedAt = t.Format(time.RFC3339)
	}
	return server.StatusInfo{
		Running:   w.bot.Running(),
		MockMode:  w.cfg.BinanceConfig.MockMode,
		Symbols:   w.cfg.WatchConfig.Symbols,
		Intervals: w.cfg.WatchConfig.Timeframes,
		StartedAt: startedAt,
	}
}

func (w *BotAPIWrapper) OpenPositions() []exchange.Position {
	return w.exchange.OpenPositions()
}

func (w *BotAPIWrapper) ClosedPositions() []exchange.Position {
	return w.exchange.ClosedPositions()
}

func (w *BotAPIWrapper) Stats() exchange.Stats {
	return w.exchange.Stats()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LoggingConfig)
	logger.Info().Msg("crypto alert bot starting")

	// Market data source
	var source binance.MarketDataSource
	if cfg.BinanceConfig.MockMode {
		logger.Warn().Msg("mock mode enabled, using simulated market data")
		source = binance.NewMockClient()
	} else {
		source = binance.NewClient(cfg.BinanceConfig.BaseURL)
	}

	// Notification channels
	notifier := notification.NewManager()
	if cfg.NotificationConfig.Enabled {
		notifier.AddNotifier(notification.NewTelegramNotifier(cfg.NotificationConfig.Telegram))
		notifier.AddNotifier(notification.NewDiscordNotifier(cfg.NotificationConfig.Discord))
	}

	// History sinks: CSV always, PostgreSQL when configured
	csvHistory, err := persistence.NewCSVHistory(cfg.PersistenceConfig.HistoryPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create history store")
	}
	history := persistence.MultiHistory{csvHistory}

	var db *database.DB
	if cfg.PersistenceConfig.Postgres.Enabled {
		db, err = database.NewDB(cfg.PersistenceConfig.Postgres, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.RunMigrations(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		cancel()

		history = append(history, database.NewRepository(db))
	}

	// Snapshot sinks: CSV always, Redis when configured
	csvSnapshot, err := persistence.NewCSVSnapshot(cfg.PersistenceConfig.SnapshotPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create snapshot store")
	}
	snapshot := persistence.MultiSnapshot{csvSnapshot}

	if cfg.PersistenceConfig.Redis.Enabled {
		redisSnapshot, err := database.NewRedisSnapshot(cfg.PersistenceConfig.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisSnapshot.Close()
		snapshot = append(snapshot, redisSnapshot)
	}

	bus := events.NewBus()

	ex := exchange.NewVirtualExchange(source, notifier, history, snapshot, bus, logger)

	// Charts: one per symbol and timeframe pair
	var charts []agent.Chart
	for _, symbol := range cfg.WatchConfig.Symbols {
		for _, tf := range cfg.WatchConfig.Timeframes {
			timeframe, err := market.ParseTimeframe(tf)
			if err != nil {
				logger.Fatal().Err(err).Msg("invalid timeframe")
			}
			chart, err := market.NewChart(source, symbol, timeframe)
			if err != nil {
				logger.Fatal().Err(err).Str("symbol", symbol).Str("timeframe", tf).Msg("failed to create chart")
			}
			charts = append(charts, chart)
		}
	}

	// Strategies
	var strategies []strategy.Strategy
	for _, name := range cfg.AgentConfig.Strategies {
		strat, err := strategy.ForName(name)
		if err != nil {
			logger.Fatal().Err(err).Msg("unknown strategy")
		}
		strategies = append(strategies, strat)
	}

	scanAgent := agent.New(charts, strategies, ex, agent.Config{
		Enabled: cfg.AgentConfig.Enabled,
		Long:    cfg.AgentConfig.Long,
		Short:   cfg.AgentConfig.Short,
	}, logger)

	pollInterval := time.Duration(cfg.ExchangeConfig.PollIntervalSeconds) * time.Second
	tradingBot := bot.New(scanAgent, ex, bus, pollInterval, logger)

	// Monitoring API
	var apiServer *server.Server
	if cfg.ServerConfig.Enabled {
		apiServer = server.NewServer(cfg.ServerConfig, &BotAPIWrapper{
			bot:      tradingBot,
			exchange: ex,
			cfg:      cfg,
		}, bus, logger)
		if err := apiServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start API server")
		}
	}

	tradingBot.Start()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	tradingBot.Stop()

	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("API server shutdown failed")
		}
	}

	logger.Info().Msg("crypto alert bot stopped")
}
