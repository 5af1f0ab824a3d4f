package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestBetValidate(t *testing.T) {
	tests := []struct {
		name    string
		bet     Bet
		wantErr bool
		wantReq bool
	}{
		{
			name: "valid team slate",
			bet: Bet{
				ID:           "bet-1",
				Type:         TeamSlate,
				TimeSlots:    []string{"1PM Slot"},
				Status:       StatusActive,
				Requirements: []Requirement{NewTeamRequirement("req-0", "Buffalo Bills", "Rushing TD", 1)},
				CreatedAt:    time.Now(),
			},
			wantErr: false,
		},
		{
			name: "valid player parlay",
			bet: Bet{
				ID:     "bet-2",
				Type:   PlayerParlay,
				Status: StatusActive,
				Requirements: []Requirement{
					NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 250),
					NewPlayerRequirement("req-1", "James Cook", "Rushing Yards", 80),
				},
			},
			wantErr: false,
		},
		{
			name: "empty ID",
			bet: Bet{
				Type:         PlayerParlay,
				Status:       StatusActive,
				Requirements: []Requirement{NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 250)},
			},
			wantErr: true,
		},
		{
			name: "slate without time slots",
			bet: Bet{
				ID:           "bet-3",
				Type:         TeamSlate,
				Status:       StatusActive,
				Requirements: []Requirement{NewTeamRequirement("req-0", "BUF", "Safety", 1)},
			},
			wantErr: true,
		},
		{
			name:    "no requirements",
			bet:     Bet{ID: "bet-4", Type: PlayerParlay, Status: StatusActive},
			wantErr: true,
		},
		{
			name: "zero threshold",
			bet: Bet{
				ID:           "bet-5",
				Type:         PlayerParlay,
				Status:       StatusActive,
				Requirements: []Requirement{NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 0)},
			},
			wantErr: true,
		},
		{
			name: "requirement without target",
			bet: Bet{
				ID:           "bet-6",
				Type:         PlayerParlay,
				Status:       StatusActive,
				Requirements: []Requirement{{ID: "req-0", Stat: "Receptions", Threshold: 5}},
			},
			wantErr: true,
		},
		{
			name: "duplicate requirement ids",
			bet: Bet{
				ID:     "bet-7",
				Type:   PlayerParlay,
				Status: StatusActive,
				Requirements: []Requirement{
					NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 250),
					NewPlayerRequirement("req-0", "James Cook", "Rushing Yards", 80),
				},
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			bet: Bet{
				ID:           "bet-8",
				Type:         "teaser",
				Status:       StatusActive,
				Requirements: []Requirement{NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 250)},
			},
			wantErr: true,
		},
		{
			name: "team requirement in player parlay",
			bet: Bet{
				ID:           "bet-9",
				Type:         PlayerParlay,
				Status:       StatusActive,
				Requirements: []Requirement{NewTeamRequirement("req-0", "Buffalo Bills", "Rushing TD", 1)},
			},
			wantErr: true,
			wantReq: true,
		},
		{
			name: "player requirement in team slate",
			bet: Bet{
				ID:           "bet-10",
				Type:         TeamSlate,
				TimeSlots:    []string{"1PM Slot"},
				Status:       StatusActive,
				Requirements: []Requirement{NewPlayerRequirement("req-0", "Josh Allen", "Passing Yards", 250)},
			},
			wantErr: true,
			wantReq: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bet.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Bet.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantReq && !errors.Is(err, ErrInvalidRequirement) {
				t.Errorf("Bet.Validate() error = %v, want ErrInvalidRequirement", err)
			}
		})
	}
}

func TestBetJSON_SettledAt(t *testing.T) {
	b := Bet{ID: "bet-1", Type: PlayerParlay, Status: StatusActive}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if _, ok := raw["settled_at"]; ok {
		t.Errorf("unsettled bet encoded settled_at: %s", data)
	}

	b.Status = StatusWon
	b.SettledAt = time.Date(2025, 9, 14, 20, 0, 0, 0, time.UTC)
	data, err = json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Bet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.SettledAt.Equal(b.SettledAt) {
		t.Errorf("SettledAt = %v, want %v", got.SettledAt, b.SettledAt)
	}
}

func TestRequirementJSON(t *testing.T) {
	req := NewPlayerRequirement("req-1", "Josh Allen", "Passing Yards", 250)
	req.Current = 287
	req.Completed = true

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if _, ok := raw["team"]; ok {
		t.Errorf("player requirement encoded a team field: %s", data)
	}

	var got Requirement
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if player, ok := got.Player(); !ok || player != "Josh Allen" {
		t.Errorf("Player() = %q, %v", player, ok)
	}
	if got.Current != 287 || !got.Completed {
		t.Errorf("progress not decoded: %+v", got)
	}
}

func TestRequirementJSON_RejectsAmbiguousTarget(t *testing.T) {
	tests := []string{
		`{"id":"req-0","team":"BUF","player":"Josh Allen","stat":"td","threshold":1}`,
		`{"id":"req-0","stat":"td","threshold":1}`,
	}
	for _, doc := range tests {
		var r Requirement
		err := json.Unmarshal([]byte(doc), &r)
		if !errors.Is(err, ErrInvalidRequirement) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrInvalidRequirement", doc, err)
		}
	}

	if _, err := json.Marshal(Requirement{ID: "req-0"}); err == nil {
		t.Error("expected marshal error for requirement without target")
	}
}

func TestGameSide(t *testing.T) {
	g := Game{
		HomeTeam: Team{Name: "Miami Dolphins", Abbreviation: "MIA"},
		AwayTeam: Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
	}
	tests := []struct {
		team   string
		want   Side
		wantOK bool
	}{
		{"Miami Dolphins", Home, true},
		{"MIA", Home, true},
		{"Buffalo Bills", Away, true},
		{"BUF", Away, true},
		{"buffalo bills", "", false},
		{"New York Jets", "", false},
	}
	for _, tt := range tests {
		side, ok := g.Side(tt.team)
		if side != tt.want || ok != tt.wantOK {
			t.Errorf("Side(%q) = %q, %v; want %q, %v", tt.team, side, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGameIsFinal(t *testing.T) {
	for status, want := range map[string]bool{"post": true, "POST": true, "in": false, "pre": false, "": false} {
		g := Game{Status: GameStatus{Type: status}}
		if got := g.IsFinal(); got != want {
			t.Errorf("IsFinal(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestBetClone(t *testing.T) {
	b := Bet{
		ID:           "bet-1",
		TimeSlots:    []string{"SNF"},
		Requirements: []Requirement{NewTeamRequirement("req-0", "BUF", "td", 1)},
	}
	c := b.Clone()
	c.Requirements[0].Current = 3
	c.TimeSlots[0] = "MNF"
	if b.Requirements[0].Current != 0 || b.TimeSlots[0] != "SNF" {
		t.Error("Clone shares slices with the original")
	}
}
