// Package betting evaluates bet requirements against game stats and derives
// bet outcomes.
package betting

import (
	"strings"

	"github.com/rewired-gh/slatewatch/internal/models"
	"github.com/rewired-gh/slatewatch/internal/stats"
)

// Result is the outcome of evaluating one requirement.
type Result struct {
	Current   int
	Completed bool
}

type teamCounter func(models.TeamCounters) int

// teamStats maps lowercased team stat labels onto scoring-play counters.
var teamStats = map[string]teamCounter{
	"rushing td":        func(c models.TeamCounters) int { return c.RushingTDs },
	"rushing touchdown": func(c models.TeamCounters) int { return c.RushingTDs },
	"field goal":        func(c models.TeamCounters) int { return c.FieldGoals },
	"fg":                func(c models.TeamCounters) int { return c.FieldGoals },
	"passing td":        func(c models.TeamCounters) int { return c.PassingTDs },
	"passing touchdown": func(c models.TeamCounters) int { return c.PassingTDs },
	"safety":            func(c models.TeamCounters) int { return c.Safeties },
	"touchdown":         func(c models.TeamCounters) int { return c.TotalTDs },
	"td":                func(c models.TeamCounters) int { return c.TotalTDs },
}

// playerStats maps lowercased player stat labels onto boxscore fields.
var playerStats = map[string]stats.Field{
	"passing yards":       stats.PassingYards,
	"rushing yards":       stats.RushingYards,
	"receiving yards":     stats.ReceivingYards,
	"passing td":          stats.PassingTDs,
	"passing touchdown":   stats.PassingTDs,
	"rushing td":          stats.RushingTDs,
	"rushing touchdown":   stats.RushingTDs,
	"receiving td":        stats.ReceivingTDs,
	"receiving touchdown": stats.ReceivingTDs,
	"receptions":          stats.ReceivingReceptions,
	"completions":         stats.PassingCompletions,
}

// playerSearchOrder is fixed; the first side holding a value wins.
var playerSearchOrder = []models.Side{models.Home, models.Away}

// IsTeamStat reports whether label is in the team stat vocabulary.
func IsTeamStat(label string) bool {
	_, ok := teamStats[strings.ToLower(label)]
	return ok
}

// IsPlayerStat reports whether label is in the player stat vocabulary.
func IsPlayerStat(label string) bool {
	_, ok := playerStats[strings.ToLower(label)]
	return ok
}

// Evaluate dispatches on the requirement's target. Player requirements ignore
// game. Requirements without a target are never satisfied.
func Evaluate(req models.Requirement, gs *models.GameStats, game models.Game) Result {
	switch req.Target.(type) {
	case models.TeamTarget:
		return EvaluateTeam(req, gs, game)
	case models.PlayerTarget:
		return EvaluatePlayer(req, gs)
	}
	return Result{}
}

// EvaluateTeam computes a team requirement from the counters of the side the
// requirement's team plays on in game. A team not in game is unsatisfiable.
func EvaluateTeam(req models.Requirement, gs *models.GameStats, game models.Game) Result {
	team, ok := req.Team()
	if !ok || gs == nil {
		return Result{}
	}
	side, ok := game.Side(team)
	if !ok {
		return Result{}
	}
	counter, ok := teamStats[strings.ToLower(req.Stat)]
	if !ok {
		return Result{}
	}
	current := counter(gs.Teams.Side(side))
	return Result{Current: current, Completed: current >= req.Threshold}
}

// EvaluatePlayer computes a player requirement by searching the home then the
// away boxscore for the player's value of the requested stat.
func EvaluatePlayer(req models.Requirement, gs *models.GameStats) Result {
	player, ok := req.Player()
	if !ok || player == "" || gs == nil {
		return Result{}
	}
	field, ok := playerStats[strings.ToLower(req.Stat)]
	if !ok {
		return Result{}
	}

	current := 0
	for _, side := range playerSearchOrder {
		if raw, found := stats.Lookup(gs.Players.Side(side), field, player); found {
			current = stats.ParseInt(raw)
			break
		}
	}
	return Result{Current: current, Completed: current >= req.Threshold}
}
