// Package reconcile runs one evaluation pass over a bet list: it fetches the
// stats of every game the active bets depend on and advances each bet.
package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/slatewatch/internal/betting"
	"github.com/rewired-gh/slatewatch/internal/logger"
	"github.com/rewired-gh/slatewatch/internal/models"
)

// StatsFetcher returns the normalized stats of one game.
type StatsFetcher interface {
	FetchGameStats(ctx context.Context, gameID string) (*models.GameStats, error)
}

const DefaultConcurrency = 4

// Reconciler evaluates bets against freshly fetched game stats.
type Reconciler struct {
	fetcher     StatsFetcher
	concurrency int
	now         func() time.Time
}

// New creates a Reconciler that issues at most concurrency fetches at once.
func New(fetcher StatsFetcher, concurrency int) *Reconciler {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Reconciler{
		fetcher:     fetcher,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Reconcile returns the bet list after one pass. Terminal bets pass through
// unchanged. Games whose stats cannot be fetched are left out of the pass;
// the requirements that depend on them keep their previous progress.
// bets is not modified.
func (r *Reconciler) Reconcile(ctx context.Context, games []models.Game, bets []models.Bet) []models.Bet {
	out := make([]models.Bet, len(bets))
	copy(out, bets)

	gameIDs := dependencies(games, bets)
	if len(gameIDs) == 0 {
		return out
	}

	gameStats := r.fetchAll(ctx, gameIDs)
	logger.Debug("Fetched stats for %d/%d games", len(gameStats), len(gameIDs))

	now := r.now()
	for i, bet := range bets {
		if bet.IsTerminal() {
			continue
		}
		out[i] = betting.Advance(bet, games, gameStats, now)
	}
	return out
}

// dependencies lists the distinct games the active bets depend on, in
// scoreboard order.
func dependencies(games []models.Game, bets []models.Bet) []string {
	needed := make(map[string]bool)
	for _, bet := range bets {
		if bet.IsTerminal() {
			continue
		}
		for _, g := range betting.RelevantGames(bet, games) {
			needed[g.ID] = true
		}
	}
	ids := make([]string, 0, len(needed))
	for _, g := range games {
		if needed[g.ID] {
			ids = append(ids, g.ID)
			delete(needed, g.ID)
		}
	}
	return ids
}

// fetchAll fetches every game concurrently. Failed fetches are logged and
// dropped; they never fail the pass.
func (r *Reconciler) fetchAll(ctx context.Context, gameIDs []string) map[string]*models.GameStats {
	var (
		mu      sync.Mutex
		results = make(map[string]*models.GameStats, len(gameIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, id := range gameIDs {
		g.Go(func() error {
			gs, err := r.fetcher.FetchGameStats(gctx, id)
			if err != nil {
				logger.Warn("Failed to fetch stats for game %s: %v", id, err)
				return nil
			}
			if gs == nil {
				return nil
			}
			mu.Lock()
			results[id] = gs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Transitions returns the bets in after that were active in before and are
// terminal now, matched by ID.
func Transitions(before, after []models.Bet) []models.Bet {
	wasActive := make(map[string]bool, len(before))
	for _, b := range before {
		if !b.IsTerminal() {
			wasActive[b.ID] = true
		}
	}
	var settled []models.Bet
	for _, b := range after {
		if b.IsTerminal() && wasActive[b.ID] {
			settled = append(settled, b)
		}
	}
	return settled
}
