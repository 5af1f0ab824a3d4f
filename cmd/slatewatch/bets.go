package main

import (
	"fmt"
	"time"

	"github.com/rewired-gh/slatewatch/internal/betting"
	"github.com/rewired-gh/slatewatch/internal/config"
	"github.com/rewired-gh/slatewatch/internal/models"
)

// buildBet turns a configured bet into a tracked one. Slates are expanded
// against games, so they can only be built once a scoreboard is known.
func buildBet(bc config.BetConfig, games []models.Game, now time.Time) (models.Bet, error) {
	def := betting.Definition{
		Title: bc.Title,
		Type:  models.BetType(bc.Type),
		Notes: bc.Notes,
	}
	switch def.Type {
	case models.TeamSlate:
		def.TimeSlots = bc.TimeSlots
		def.Requirements = betting.SlateRequirements(games, bc.TimeSlots, bc.Stat, orDefault(bc.Threshold))
	case models.PlayerParlay:
		legs := make([]betting.Leg, len(bc.Legs))
		for i, l := range bc.Legs {
			legs[i] = betting.Leg{Player: l.Player, Stat: l.Stat, Threshold: orDefault(l.Threshold)}
		}
		def.Requirements = betting.ParlayRequirements(legs)
	default:
		return models.Bet{}, fmt.Errorf("unknown bet type %q", bc.Type)
	}
	return betting.NewBet(def, now)
}

func orDefault(threshold int) int {
	if threshold == 0 {
		return 1
	}
	return threshold
}
