package betting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/slatewatch/internal/models"
)

var ErrNoRequirements = errors.New("bet has no requirements")

// Definition describes a bet to create.
type Definition struct {
	Title        string
	Type         models.BetType
	TimeSlots    []string
	Requirements []models.Requirement
	Notes        string
}

// Leg is one player condition of a parlay definition.
type Leg struct {
	Player    string
	Stat      string
	Threshold int
}

// NewBet creates an active bet from def.
func NewBet(def Definition, now time.Time) (models.Bet, error) {
	if len(def.Requirements) == 0 {
		return models.Bet{}, ErrNoRequirements
	}
	bet := models.Bet{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(def.Title),
		Type:         def.Type,
		Status:       models.StatusActive,
		Requirements: make([]models.Requirement, len(def.Requirements)),
		Notes:        strings.TrimSpace(def.Notes),
		CreatedAt:    now,
	}
	for i, r := range def.Requirements {
		r.Current = 0
		r.Completed = false
		bet.Requirements[i] = r
	}
	if def.Type == models.TeamSlate {
		bet.TimeSlots = append([]string(nil), def.TimeSlots...)
	}
	if err := bet.Validate(); err != nil {
		return models.Bet{}, fmt.Errorf("invalid bet definition: %w", err)
	}
	return bet, nil
}

// SlateRequirements builds one team requirement per competitor of every game
// in slots, all sharing stat and threshold.
func SlateRequirements(games []models.Game, slots []string, stat string, threshold int) []models.Requirement {
	selected := make(map[string]bool, len(slots))
	for _, s := range slots {
		selected[s] = true
	}
	var reqs []models.Requirement
	for _, g := range games {
		if !selected[g.TimeSlot] {
			continue
		}
		for _, team := range []string{g.HomeTeam.Name, g.AwayTeam.Name} {
			reqs = append(reqs, models.NewTeamRequirement(fmt.Sprintf("req-%d", len(reqs)), team, stat, threshold))
		}
	}
	return reqs
}

// ParlayRequirements builds one player requirement per leg, skipping legs
// with no player or stat.
func ParlayRequirements(legs []Leg) []models.Requirement {
	var reqs []models.Requirement
	for _, leg := range legs {
		player := strings.TrimSpace(leg.Player)
		if player == "" || leg.Stat == "" {
			continue
		}
		reqs = append(reqs, models.NewPlayerRequirement(fmt.Sprintf("req-%d", len(reqs)), player, leg.Stat, leg.Threshold))
	}
	return reqs
}
