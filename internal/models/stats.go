package models

// TeamCounters are the scoring-play tallies for one side of a game.
// TotalTDs always equals RushingTDs + PassingTDs.
type TeamCounters struct {
	RushingTDs int `json:"rushing_tds"`
	PassingTDs int `json:"passing_tds"`
	FieldGoals int `json:"field_goals"`
	Safeties   int `json:"safeties"`
	TotalTDs   int `json:"total_tds"`
}

// TeamStats holds both sides' counters.
type TeamStats struct {
	Home TeamCounters `json:"home"`
	Away TeamCounters `json:"away"`
}

// Side returns the counters for s.
func (t TeamStats) Side(s Side) TeamCounters {
	if s == Home {
		return t.Home
	}
	return t.Away
}

// SidePlayerStats maps a lowercased provider stat category (passing, rushing,
// receiving, ...) to player display name to the raw stat values, in provider order.
type SidePlayerStats map[string]map[string][]string

// PlayerStats holds both sides' boxscore stats.
type PlayerStats struct {
	Home SidePlayerStats `json:"home"`
	Away SidePlayerStats `json:"away"`
}

// Side returns the boxscore stats for s.
func (p PlayerStats) Side(s Side) SidePlayerStats {
	if s == Home {
		return p.Home
	}
	return p.Away
}

// StatsStatus is the competition status at the time of extraction.
type StatsStatus struct {
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

// GameStats is the normalized snapshot of one game, recomputed on every refresh.
type GameStats struct {
	GameID  string      `json:"game_id"`
	Teams   TeamStats   `json:"teams"`
	Players PlayerStats `json:"players"`
	Status  StatsStatus `json:"status"`
}
