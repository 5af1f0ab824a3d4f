package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// BetType distinguishes slate wagers from player parlays.
type BetType string

const (
	TeamSlate    BetType = "team_slate"
	PlayerParlay BetType = "player_parlay"
)

// BetStatus is the lifecycle state of a bet. Won and lost are terminal.
type BetStatus string

const (
	StatusActive BetStatus = "active"
	StatusWon    BetStatus = "won"
	StatusLost   BetStatus = "lost"
)

var ErrInvalidRequirement = errors.New("invalid requirement")

// Target is what a requirement is measured against: a team or a player.
// The interface is sealed; TeamTarget and PlayerTarget are the only variants.
type Target interface {
	Label() string
	isTarget()
}

// TeamTarget names a team by display name or abbreviation.
type TeamTarget struct {
	Team string
}

func (t TeamTarget) Label() string { return t.Team }
func (TeamTarget) isTarget()       {}

// PlayerTarget names a player by display name.
type PlayerTarget struct {
	Player string
}

func (p PlayerTarget) Label() string { return p.Player }
func (PlayerTarget) isTarget()       {}

// Requirement is one atomic condition of a bet.
type Requirement struct {
	ID        string
	Target    Target
	Stat      string
	Threshold int
	Current   int
	Completed bool
}

// NewTeamRequirement builds a team-level requirement.
func NewTeamRequirement(id, team, stat string, threshold int) Requirement {
	return Requirement{ID: id, Target: TeamTarget{Team: team}, Stat: stat, Threshold: threshold}
}

// NewPlayerRequirement builds a player-level requirement.
func NewPlayerRequirement(id, player, stat string, threshold int) Requirement {
	return Requirement{ID: id, Target: PlayerTarget{Player: player}, Stat: stat, Threshold: threshold}
}

// Team returns the team name and true for team requirements.
func (r Requirement) Team() (string, bool) {
	t, ok := r.Target.(TeamTarget)
	return t.Team, ok
}

// Player returns the player name and true for player requirements.
func (r Requirement) Player() (string, bool) {
	p, ok := r.Target.(PlayerTarget)
	return p.Player, ok
}

// Validate checks requirement field constraints.
func (r Requirement) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidRequirement)
	}
	switch t := r.Target.(type) {
	case TeamTarget:
		if t.Team == "" {
			return fmt.Errorf("%w: %s: team must not be empty", ErrInvalidRequirement, r.ID)
		}
	case PlayerTarget:
		if t.Player == "" {
			return fmt.Errorf("%w: %s: player must not be empty", ErrInvalidRequirement, r.ID)
		}
	default:
		return fmt.Errorf("%w: %s: no team or player", ErrInvalidRequirement, r.ID)
	}
	if r.Stat == "" {
		return fmt.Errorf("%w: %s: stat must not be empty", ErrInvalidRequirement, r.ID)
	}
	if r.Threshold < 1 {
		return fmt.Errorf("%w: %s: threshold must be at least 1", ErrInvalidRequirement, r.ID)
	}
	return nil
}

type requirementJSON struct {
	ID        string `json:"id"`
	Team      string `json:"team,omitempty"`
	Player    string `json:"player,omitempty"`
	Stat      string `json:"stat"`
	Threshold int    `json:"threshold"`
	Current   int    `json:"current"`
	Completed bool   `json:"completed"`
}

// MarshalJSON flattens the target into exactly one of team or player.
func (r Requirement) MarshalJSON() ([]byte, error) {
	out := requirementJSON{
		ID:        r.ID,
		Stat:      r.Stat,
		Threshold: r.Threshold,
		Current:   r.Current,
		Completed: r.Completed,
	}
	switch t := r.Target.(type) {
	case TeamTarget:
		out.Team = t.Team
	case PlayerTarget:
		out.Player = t.Player
	default:
		return nil, fmt.Errorf("%w: %s: no team or player", ErrInvalidRequirement, r.ID)
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects documents that set both or neither of team and player.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var in requirementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Team != "" && in.Player != "":
		return fmt.Errorf("%w: %s: both team and player set", ErrInvalidRequirement, in.ID)
	case in.Team != "":
		r.Target = TeamTarget{Team: in.Team}
	case in.Player != "":
		r.Target = PlayerTarget{Player: in.Player}
	default:
		return fmt.Errorf("%w: %s: no team or player", ErrInvalidRequirement, in.ID)
	}
	r.ID = in.ID
	r.Stat = in.Stat
	r.Threshold = in.Threshold
	r.Current = in.Current
	r.Completed = in.Completed
	return nil
}

// Bet is a collection of requirements plus lifecycle metadata.
type Bet struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Type         BetType       `json:"type"`
	TimeSlots    []string      `json:"time_slots,omitempty"`
	Status       BetStatus     `json:"status"`
	Requirements []Requirement `json:"requirements"`
	Notes        string        `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	SettledAt    time.Time     `json:"settled_at,omitzero"`
}

// IsTerminal reports whether the bet has been decided.
func (b Bet) IsTerminal() bool {
	return b.Status == StatusWon || b.Status == StatusLost
}

// Clone returns a copy that shares no slices with b.
func (b Bet) Clone() Bet {
	c := b
	if b.TimeSlots != nil {
		c.TimeSlots = append([]string(nil), b.TimeSlots...)
	}
	if b.Requirements != nil {
		c.Requirements = append([]Requirement(nil), b.Requirements...)
	}
	return c
}

// Progress returns how many requirements are completed.
func (b Bet) Progress() (done, total int) {
	for _, r := range b.Requirements {
		if r.Completed {
			done++
		}
	}
	return done, len(b.Requirements)
}

// Validate checks bet field constraints.
func (b Bet) Validate() error {
	if b.ID == "" {
		return errors.New("bet ID must not be empty")
	}
	switch b.Type {
	case TeamSlate:
		if len(b.TimeSlots) == 0 {
			return errors.New("team slate bet must name at least one time slot")
		}
	case PlayerParlay:
	default:
		return fmt.Errorf("unknown bet type %q", b.Type)
	}
	switch b.Status {
	case StatusActive, StatusWon, StatusLost:
	default:
		return fmt.Errorf("unknown bet status %q", b.Status)
	}
	if len(b.Requirements) == 0 {
		return errors.New("bet must have at least one requirement")
	}
	seen := make(map[string]bool, len(b.Requirements))
	for _, r := range b.Requirements {
		if err := r.Validate(); err != nil {
			return err
		}
		if err := b.checkKind(r); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidRequirement, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// checkKind enforces that slates hold only team requirements and parlays
// only player requirements.
func (b Bet) checkKind(r Requirement) error {
	_, isTeam := r.Team()
	switch {
	case b.Type == TeamSlate && !isTeam:
		return fmt.Errorf("%w: %s: team slate requires a team", ErrInvalidRequirement, r.ID)
	case b.Type == PlayerParlay && isTeam:
		return fmt.Errorf("%w: %s: player parlay requires a player", ErrInvalidRequirement, r.ID)
	}
	return nil
}
