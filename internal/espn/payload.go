package espn

// ScoreboardResponse is the subset of the scoreboard endpoint the tracker reads.
type ScoreboardResponse struct {
	Events []Event `json:"events"`
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
}

// Event is one game on the scoreboard.
type Event struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Competitions []Competition `json:"competitions"`
}

// Competition carries the competitors, status, and kickoff time of an event.
type Competition struct {
	Date        string       `json:"date"`
	Competitors []Competitor `json:"competitors"`
	Status      Status       `json:"status"`
}

// Competitor is one side of a competition.
type Competitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     TeamInfo `json:"team"`
}

// TeamInfo identifies a team.
type TeamInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
}

// Status is the provider status block.
type Status struct {
	Type StatusType `json:"type"`
}

// StatusType holds the state (pre, in, post) and its human-readable forms.
type StatusType struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
}

// Summary is the subset of the per-game summary endpoint used for stat extraction.
type Summary struct {
	Header       Header        `json:"header"`
	Boxscore     Boxscore      `json:"boxscore"`
	ScoringPlays []ScoringPlay `json:"scoringPlays"`
}

// Header holds the competition block of a summary.
type Header struct {
	Competitions []Competition `json:"competitions"`
}

// Boxscore holds per-team player stat trees, away team first.
type Boxscore struct {
	Players []BoxscoreTeam `json:"players"`
}

// BoxscoreTeam is one team's player stats grouped by category. Depending on
// the endpoint revision the groups arrive under statistics or categories.
type BoxscoreTeam struct {
	Team       TeamInfo       `json:"team"`
	Statistics []StatCategory `json:"statistics"`
	Categories []StatCategory `json:"categories"`
}

// Groups returns whichever category list the provider populated.
func (t BoxscoreTeam) Groups() []StatCategory {
	if len(t.Statistics) > 0 {
		return t.Statistics
	}
	return t.Categories
}

// StatCategory lists athletes and their stat values for one category.
// Labels names the positions of Stats for each athlete.
type StatCategory struct {
	Name     string         `json:"name"`
	Labels   []string       `json:"labels"`
	Athletes []AthleteStats `json:"athletes"`
}

// AthleteStats is one athlete's row within a category.
type AthleteStats struct {
	Athlete Athlete  `json:"athlete"`
	Stats   []string `json:"stats"`
}

// Athlete identifies a player.
type Athlete struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	DisplayName string `json:"displayName"`
}

// ScoringPlay is one scoring event.
type ScoringPlay struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        PlayType     `json:"type"`
	Team        TeamInfo     `json:"team"`
	ScoringType *ScoringType `json:"scoringType,omitempty"`
	AwayScore   int          `json:"awayScore"`
	HomeScore   int          `json:"homeScore"`
	Period      struct {
		Number int `json:"number"`
	} `json:"period"`
}

// PlayType is the play classification.
type PlayType struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Abbreviation string `json:"abbreviation"`
}

// ScoringType is the scoring classification, when the provider supplies one.
type ScoringType struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// ScoringText returns the text used to classify the play: the scoring type's
// display name, falling back to the play type text.
func (p ScoringPlay) ScoringText() string {
	if p.ScoringType != nil && p.ScoringType.DisplayName != "" {
		return p.ScoringType.DisplayName
	}
	return p.Type.Text
}
