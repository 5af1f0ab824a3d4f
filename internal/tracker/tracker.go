// Package tracker owns the current game list and bet list and serializes the
// passes that update them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rewired-gh/slatewatch/internal/espn"
	"github.com/rewired-gh/slatewatch/internal/logger"
	"github.com/rewired-gh/slatewatch/internal/models"
	"github.com/rewired-gh/slatewatch/internal/reconcile"
)

var ErrBetNotFound = errors.New("bet not found")

// ScoreboardSource returns today's games.
type ScoreboardSource interface {
	FetchScoreboard(ctx context.Context) (*espn.Scoreboard, error)
}

// Reconciler runs one evaluation pass.
type Reconciler interface {
	Reconcile(ctx context.Context, games []models.Game, bets []models.Bet) []models.Bet
}

// Tracker holds the last known scoreboard and the bet list. User actions
// (Add, Remove) and reconciliation passes never interleave on the list.
type Tracker struct {
	source     ScoreboardSource
	reconciler Reconciler

	mu        sync.RWMutex
	games     []models.Game
	timeSlots []string
	bets      []models.Bet
	refreshed time.Time

	passing atomic.Bool
}

// New creates an empty tracker.
func New(source ScoreboardSource, reconciler Reconciler) *Tracker {
	return &Tracker{
		source:     source,
		reconciler: reconciler,
	}
}

// Refresh fetches the scoreboard and reports whether any game changed. On
// failure the last known games are kept.
func (t *Tracker) Refresh(ctx context.Context) (bool, error) {
	board, err := t.source.FetchScoreboard(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to refresh scoreboard: %w", err)
	}

	t.mu.Lock()
	changed := !sameGames(t.games, board.Games)
	t.games = board.Games
	t.timeSlots = board.TimeSlots
	t.refreshed = time.Now()
	t.mu.Unlock()

	logger.Debug("Scoreboard refreshed: %d games in %d time slots (changed: %v)", len(board.Games), len(board.TimeSlots), changed)
	return changed, nil
}

// sameGames compares the fields that move during a game.
func sameGames(a, b []models.Game) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].HomeScore != b[i].HomeScore ||
			a[i].AwayScore != b[i].AwayScore ||
			a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}

// Games returns the last known games.
func (t *Tracker) Games() []models.Game {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Game(nil), t.games...)
}

// TimeSlots returns the time slots of the last known games.
func (t *Tracker) TimeSlots() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.timeSlots...)
}

// LastRefresh returns when the scoreboard was last fetched successfully.
func (t *Tracker) LastRefresh() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refreshed
}

// Bets returns a snapshot of the bet list.
func (t *Tracker) Bets() []models.Bet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Bet, len(t.bets))
	for i, b := range t.bets {
		out[i] = b.Clone()
	}
	return out
}

// Add appends a bet.
func (t *Tracker) Add(bet models.Bet) error {
	if err := bet.Validate(); err != nil {
		return fmt.Errorf("invalid bet: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range t.bets {
		if b.ID == bet.ID {
			return fmt.Errorf("bet %s already tracked", bet.ID)
		}
	}
	t.bets = append(t.bets, bet.Clone())
	return nil
}

// Remove drops a bet by ID.
func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, b := range t.bets {
		if b.ID == id {
			t.bets = append(t.bets[:i:i], t.bets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrBetNotFound, id)
}

// Reconcile runs one pass over a snapshot of the bet list and commits the
// result. It returns the bets that became terminal in this pass. A call made
// while another pass is running is skipped and returns false.
func (t *Tracker) Reconcile(ctx context.Context) ([]models.Bet, bool) {
	if !t.passing.CompareAndSwap(false, true) {
		logger.Debug("Reconciliation already in progress, skipping")
		return nil, false
	}
	defer t.passing.Store(false)

	games := t.Games()
	before := t.Bets()
	if len(games) == 0 || len(before) == 0 {
		return nil, true
	}

	after := t.reconciler.Reconcile(ctx, games, before)
	t.commit(after)

	return reconcile.Transitions(before, after), true
}

// commit replaces bets by ID. Bets removed during the pass stay removed and
// bets added during the pass are kept.
func (t *Tracker) commit(updated []models.Bet) {
	byID := make(map[string]models.Bet, len(updated))
	for _, b := range updated {
		byID[b.ID] = b
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, b := range t.bets {
		if u, ok := byID[b.ID]; ok {
			t.bets[i] = u
		}
	}
}

// Prune removes terminal bets settled at least grace ago and returns them.
// Bets without a settlement time age from their creation time.
func (t *Tracker) Prune(now time.Time, grace time.Duration) []models.Bet {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []models.Bet
	kept := t.bets[:0]
	for _, b := range t.bets {
		if b.IsTerminal() && now.Sub(settledAt(b)) >= grace {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(t.bets); i++ {
		t.bets[i] = models.Bet{}
	}
	t.bets = kept
	return removed
}

func settledAt(b models.Bet) time.Time {
	if !b.SettledAt.IsZero() {
		return b.SettledAt
	}
	return b.CreatedAt
}
