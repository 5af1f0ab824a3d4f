package betting

import (
	"time"

	"github.com/rewired-gh/slatewatch/internal/models"
)

// RelevantGames returns the games a bet depends on, in scoreboard order.
// A slate depends on the games in its time slots. A parlay depends on every
// game, since the games its players appear in are not tracked.
func RelevantGames(bet models.Bet, games []models.Game) []models.Game {
	if bet.Type != models.TeamSlate {
		return games
	}
	slots := make(map[string]bool, len(bet.TimeSlots))
	for _, s := range bet.TimeSlots {
		slots[s] = true
	}
	var relevant []models.Game
	for _, g := range games {
		if slots[g.TimeSlot] {
			relevant = append(relevant, g)
		}
	}
	return relevant
}

// Advance re-evaluates every requirement of an active bet and derives its
// status. Terminal bets are returned unchanged. bet is not modified.
//
// gameStats holds whatever stats were fetched this cycle. A requirement
// whose game has no stats keeps its previous progress.
func Advance(bet models.Bet, games []models.Game, gameStats map[string]*models.GameStats, now time.Time) models.Bet {
	if bet.IsTerminal() {
		return bet
	}

	next := bet.Clone()
	relevant := RelevantGames(bet, games)
	for i := range next.Requirements {
		next.Requirements[i] = advanceRequirement(next.Requirements[i], relevant, gameStats)
	}

	next.Status = deriveStatus(next.Requirements, relevant)
	if next.IsTerminal() {
		next.SettledAt = now
	}
	return next
}

func advanceRequirement(req models.Requirement, relevant []models.Game, gameStats map[string]*models.GameStats) models.Requirement {
	switch t := req.Target.(type) {
	case models.TeamTarget:
		game, ok := owningGame(t.Team, relevant)
		if !ok {
			return req
		}
		gs, ok := gameStats[game.ID]
		if !ok {
			return req
		}
		return apply(req, EvaluateTeam(req, gs, game))

	case models.PlayerTarget:
		// The first game where the player shows a non-zero value wins. A
		// genuine zero cannot be told apart from "not in this game" and
		// keeps the search going.
		for _, game := range relevant {
			gs, ok := gameStats[game.ID]
			if !ok {
				continue
			}
			if res := EvaluatePlayer(req, gs); res.Current > 0 {
				return apply(req, res)
			}
		}
	}
	return req
}

// apply records an evaluation. Completion never reverts.
func apply(req models.Requirement, res Result) models.Requirement {
	req.Current = res.Current
	req.Completed = req.Completed || res.Completed
	return req
}

// owningGame finds the first game the team plays in.
func owningGame(team string, games []models.Game) (models.Game, bool) {
	for _, g := range games {
		if g.Involves(team) {
			return g, true
		}
	}
	return models.Game{}, false
}

// deriveStatus applies the outcome rules in order: all requirements completed
// wins; otherwise an incomplete team requirement whose game is final loses.
// Player requirements never lose a bet.
func deriveStatus(reqs []models.Requirement, relevant []models.Game) models.BetStatus {
	if allCompleted(reqs) {
		return models.StatusWon
	}
	for _, req := range reqs {
		team, ok := req.Team()
		if !ok || req.Completed {
			continue
		}
		if game, ok := owningGame(team, relevant); ok && game.IsFinal() {
			return models.StatusLost
		}
	}
	return models.StatusActive
}

func allCompleted(reqs []models.Requirement) bool {
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if !r.Completed {
			return false
		}
	}
	return true
}
