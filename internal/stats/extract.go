// Package stats turns ESPN game summaries into normalized GameStats.
package stats

import (
	"strings"

	"github.com/rewired-gh/slatewatch/internal/espn"
	"github.com/rewired-gh/slatewatch/internal/models"
)

// Extract builds the GameStats for one game. It never fails: missing
// sections of the payload produce empty structures.
func Extract(gameID string, summary *espn.Summary) models.GameStats {
	gs := models.GameStats{
		GameID: gameID,
		Players: models.PlayerStats{
			Home: models.SidePlayerStats{},
			Away: models.SidePlayerStats{},
		},
	}
	if summary == nil {
		return gs
	}

	var competitors []espn.Competitor
	if len(summary.Header.Competitions) > 0 {
		comp := summary.Header.Competitions[0]
		competitors = comp.Competitors
		gs.Status = models.StatsStatus{
			State:     comp.Status.Type.State,
			Completed: comp.Status.Type.Completed,
		}
	}

	for _, play := range summary.ScoringPlays {
		side := resolveSide(play.Team.Abbreviation, competitors)
		counters := &gs.Teams.Away
		if side == models.Home {
			counters = &gs.Teams.Home
		}
		tally(counters, classify(play.ScoringText()))
	}

	// The boxscore lists the away team first and the home team second.
	for i, team := range summary.Boxscore.Players {
		var side models.SidePlayerStats
		switch i {
		case 0:
			side = gs.Players.Away
		case 1:
			side = gs.Players.Home
		default:
			continue
		}
		for _, category := range team.Groups() {
			name := strings.ToLower(category.Name)
			players := make(map[string][]string, len(category.Athletes))
			for _, a := range category.Athletes {
				if a.Athlete.DisplayName == "" {
					continue
				}
				players[a.Athlete.DisplayName] = a.Stats
			}
			side[name] = players
		}
	}

	return gs
}

// resolveSide matches a scoring team's abbreviation against the competitors.
// Plays that cannot be attributed count toward the away side.
func resolveSide(abbreviation string, competitors []espn.Competitor) models.Side {
	for _, c := range competitors {
		if c.Team.Abbreviation != abbreviation {
			continue
		}
		if c.HomeAway == string(models.Home) {
			return models.Home
		}
		return models.Away
	}
	return models.Away
}

type playKind int

const (
	playOther playKind = iota
	playRushingTD
	playPassingTD
	playFieldGoal
	playSafety
)

func classify(text string) playKind {
	s := strings.ToLower(text)
	touchdown := strings.Contains(s, "td") || strings.Contains(s, "touchdown")
	switch {
	case strings.Contains(s, "rushing") && touchdown:
		return playRushingTD
	case strings.Contains(s, "passing") && touchdown:
		return playPassingTD
	case strings.Contains(s, "field goal"):
		return playFieldGoal
	case strings.Contains(s, "safety"):
		return playSafety
	}
	return playOther
}

func tally(c *models.TeamCounters, kind playKind) {
	switch kind {
	case playRushingTD:
		c.RushingTDs++
		c.TotalTDs++
	case playPassingTD:
		c.PassingTDs++
		c.TotalTDs++
	case playFieldGoal:
		c.FieldGoals++
	case playSafety:
		c.Safeties++
	}
}
