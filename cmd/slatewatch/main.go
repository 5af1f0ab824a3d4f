package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rewired-gh/slatewatch/internal/betting"
	"github.com/rewired-gh/slatewatch/internal/cache"
	"github.com/rewired-gh/slatewatch/internal/config"
	"github.com/rewired-gh/slatewatch/internal/espn"
	"github.com/rewired-gh/slatewatch/internal/logger"
	"github.com/rewired-gh/slatewatch/internal/models"
	"github.com/rewired-gh/slatewatch/internal/reconcile"
	"github.com/rewired-gh/slatewatch/internal/stats"
	"github.com/rewired-gh/slatewatch/internal/storage"
	"github.com/rewired-gh/slatewatch/internal/telegram"
	"github.com/rewired-gh/slatewatch/internal/tracker"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(
		cfg.Storage.MaxOutcomes,
		cfg.Storage.DBPath,
	)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	espnClient := espn.NewClient(
		cfg.ESPN.BaseURL,
		cfg.ESPN.SportPath,
		cfg.ESPN.Timeout,
		espn.ClientConfig{
			MaxRetries:     cfg.ESPN.MaxRetries,
			RetryDelayBase: cfg.ESPN.RetryDelayBase,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetcher reconcile.StatsFetcher = stats.NewSource(espnClient)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			logger.Fatal("Failed to initialize stats cache: %v", err)
		}
		defer redisClient.Close() //nolint:errcheck
		fetcher = cache.NewRedisCache(redisClient, fetcher, cfg.Cache.TTL, cfg.Cache.FinalTTL)
		logger.Info("Stats cache enabled at %s", cfg.Cache.Addr)
	} else {
		logger.Debug("Stats cache disabled")
	}

	tr := tracker.New(espnClient, reconcile.New(fetcher, cfg.ESPN.FetchConcurrency))

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if telegramClient != nil {
		telegramClient.ListenForCommands(ctx, tr, store)
	}

	logger.Info("Starting bet tracker (scoreboard: %v, reconcile: %v, debounce: %v, bets configured: %d)",
		cfg.ESPN.ScoreboardInterval,
		cfg.Tracker.ReconcileInterval,
		cfg.Tracker.Debounce,
		len(cfg.Bets),
	)

	scoreboardTicker := time.NewTicker(cfg.ESPN.ScoreboardInterval)
	defer scoreboardTicker.Stop()
	reconcileTicker := time.NewTicker(cfg.Tracker.ReconcileInterval)
	defer reconcileTicker.Stop()
	pruneTicker := time.NewTicker(cfg.Tracker.PruneInterval)
	defer pruneTicker.Stop()
	debouncer := tracker.NewDebouncer(cfg.Tracker.Debounce)
	defer debouncer.Stop()

	consecutiveFailures := 0

	handleRefreshResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Scoreboard refresh failed: %v", err)
			if consecutiveFailures == 1 && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	// Configured bets wait for the first successful refresh: slates need
	// the day's games to expand.
	pending := cfg.Bets
	refresh := func() {
		changed, err := tr.Refresh(ctx)
		handleRefreshResult(err)
		if err != nil {
			return
		}
		if len(pending) > 0 {
			addConfiguredBets(tr, pending)
			pending = nil
			changed = true
		}
		if changed {
			debouncer.Trigger()
		}
	}

	logger.Debug("Running initial scoreboard refresh")
	refresh()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-scoreboardTicker.C:
			refresh()

		case <-debouncer.C:
			logger.Debug("Games changed, starting reconciliation")
			go runReconciliation(ctx, tr, store, telegramClient)

		case <-reconcileTicker.C:
			go runReconciliation(ctx, tr, store, telegramClient)

		case <-pruneTicker.C:
			removed := tr.Prune(time.Now(), cfg.Tracker.TerminalGrace)
			if len(removed) > 0 {
				logger.Info("Removed %d settled bets", len(removed))
			}
			if err := store.RotateOutcomes(); err != nil {
				logger.Warn("Failed to rotate outcomes: %v", err)
			}
		}
	}
}

func addConfiguredBets(tr *tracker.Tracker, bets []config.BetConfig) {
	games := tr.Games()
	now := time.Now()
	for i, bc := range bets {
		bet, err := buildBet(bc, games, now)
		if err != nil {
			logger.Warn("Skipping configured bet %d (%q): %v", i, bc.Title, err)
			continue
		}
		if err := tr.Add(bet); err != nil {
			logger.Warn("Failed to track bet %q: %v", bc.Title, err)
			continue
		}
		warnUnknownStats(bet)
		done, total := bet.Progress()
		logger.Info("Tracking %s %q (%s, %d/%d requirements)", bet.Type, bet.Title, bet.ID, done, total)
	}
}

// warnUnknownStats flags requirements that can never progress because their
// stat label is not recognized.
func warnUnknownStats(bet models.Bet) {
	for _, r := range bet.Requirements {
		known := betting.IsPlayerStat(r.Stat)
		if _, ok := r.Team(); ok {
			known = betting.IsTeamStat(r.Stat)
		}
		if !known {
			logger.Warn("Bet %q: unrecognized stat %q for %s", bet.Title, r.Stat, r.Target.Label())
		}
	}
}

func runReconciliation(
	ctx context.Context,
	tr *tracker.Tracker,
	store *storage.Storage,
	telegramClient *telegram.Client,
) {
	startTime := time.Now()
	settled, ran := tr.Reconcile(ctx)
	if !ran {
		return
	}
	logger.Debug("Reconciliation completed in %v", time.Since(startTime))
	if len(settled) == 0 {
		return
	}

	for _, bet := range settled {
		logger.Info("Bet %q (%s) settled: %s", bet.Title, bet.ID, bet.Status)
		if err := store.RecordOutcome(bet); err != nil {
			logger.Warn("Failed to record outcome %s: %v", bet.ID, err)
		}
	}

	if telegramClient == nil {
		logger.Debug("Bets settled but Telegram notifications disabled")
		return
	}
	if err := telegramClient.SendOutcomes(settled); err != nil {
		logger.Error("Failed to send Telegram notification: %v", err)
		return
	}
	logger.Info("Sent Telegram notification for %d settled bets", len(settled))
	markNotified(store, settled)
}

func markNotified(store *storage.Storage, bets []models.Bet) {
	for _, bet := range bets {
		if err := store.MarkNotified(bet.ID); err != nil {
			logger.Warn("Failed to mark outcome %s notified: %v", bet.ID, err)
		}
	}
}
