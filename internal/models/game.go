// Package models defines the core domain entities: games, per-game stats, and bets.
package models

import (
	"strings"
	"time"
)

// Side identifies one of the two competitors in a game.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// Team is a competitor as reported by the scoreboard.
type Team struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// GameStatus echoes the provider's status block. Type is one of pre, in, post.
type GameStatus struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Game is one scoreboard entry, already labeled with its time slot.
type Game struct {
	ID        string     `json:"id"`
	HomeTeam  Team       `json:"home_team"`
	AwayTeam  Team       `json:"away_team"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	TimeSlot  string     `json:"time_slot"`
	Status    GameStatus `json:"status"`
	Date      time.Time  `json:"date"`
}

// IsFinal reports whether the provider marks the game as finished.
func (g Game) IsFinal() bool {
	return strings.EqualFold(g.Status.Type, "post")
}

// Side resolves which competitor team names. The match is exact against the
// display name or the abbreviation, home first.
func (g Game) Side(team string) (Side, bool) {
	switch {
	case g.HomeTeam.Name == team || g.HomeTeam.Abbreviation == team:
		return Home, true
	case g.AwayTeam.Name == team || g.AwayTeam.Abbreviation == team:
		return Away, true
	}
	return "", false
}

// Involves reports whether team plays in this game.
func (g Game) Involves(team string) bool {
	_, ok := g.Side(team)
	return ok
}
