package main

import (
	"errors"
	"testing"
	"time"

	"github.com/rewired-gh/slatewatch/internal/betting"
	"github.com/rewired-gh/slatewatch/internal/config"
	"github.com/rewired-gh/slatewatch/internal/models"
)

func TestBuildBet(t *testing.T) {
	now := time.Date(2025, 9, 14, 16, 0, 0, 0, time.UTC)
	games := []models.Game{
		{ID: "1", HomeTeam: models.Team{Name: "Miami Dolphins"}, AwayTeam: models.Team{Name: "Buffalo Bills"}, TimeSlot: "1PM Slot"},
		{ID: "2", HomeTeam: models.Team{Name: "Kansas City Chiefs"}, AwayTeam: models.Team{Name: "Denver Broncos"}, TimeSlot: "SNF"},
	}

	slate, err := buildBet(config.BetConfig{
		Title:     "Early TDs",
		Type:      "team_slate",
		TimeSlots: []string{"1PM Slot"},
		Stat:      "Rushing TD",
	}, games, now)
	if err != nil {
		t.Fatalf("slate: %v", err)
	}
	if len(slate.Requirements) != 2 || slate.Requirements[0].Threshold != 1 {
		t.Errorf("slate requirements = %+v", slate.Requirements)
	}

	parlay, err := buildBet(config.BetConfig{
		Type: "player_parlay",
		Legs: []config.LegConfig{
			{Player: "Josh Allen", Stat: "Passing Yards", Threshold: 250},
			{Player: "", Stat: "Receptions", Threshold: 5},
		},
	}, nil, now)
	if err != nil {
		t.Fatalf("parlay: %v", err)
	}
	if len(parlay.Requirements) != 1 || parlay.Requirements[0].Threshold != 250 {
		t.Errorf("parlay requirements = %+v", parlay.Requirements)
	}

	_, err = buildBet(config.BetConfig{Type: "team_slate", TimeSlots: []string{"MNF"}, Stat: "Rushing TD"}, games, now)
	if !errors.Is(err, betting.ErrNoRequirements) {
		t.Errorf("slate with no games: error = %v, want ErrNoRequirements", err)
	}

	if _, err := buildBet(config.BetConfig{Type: "teaser"}, games, now); err == nil {
		t.Error("expected error for unknown type")
	}
}
