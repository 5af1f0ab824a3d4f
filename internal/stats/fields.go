package stats

import (
	"math"

	"github.com/rewired-gh/slatewatch/internal/models"
)

// Field is a named player statistic. It is the only vocabulary callers use to
// read boxscore values; the positional layout stays in this file.
type Field int

const (
	FieldUnknown Field = iota
	PassingCompletions
	PassingYards
	PassingTDs
	RushingYards
	RushingTDs
	ReceivingReceptions
	ReceivingYards
	ReceivingTDs
)

type location struct {
	category string
	index    int
}

// locations maps each field onto its boxscore category and position.
//
// The positions mirror the provider's current column order (passing:
// C/ATT, YDS, TD; rushing: CAR, YDS, TD; receiving: REC, YDS, TD ...).
// The provider does not guarantee that order; a reshuffle upstream
// silently yields wrong values here and nowhere else.
var locations = map[Field]location{
	PassingCompletions:  {"passing", 0},
	PassingYards:        {"passing", 1},
	PassingTDs:          {"passing", 2},
	RushingYards:        {"rushing", 1},
	RushingTDs:          {"rushing", 2},
	ReceivingReceptions: {"receiving", 0},
	ReceivingYards:      {"receiving", 1},
	ReceivingTDs:        {"receiving", 2},
}

func (f Field) String() string {
	switch f {
	case PassingCompletions:
		return "passing completions"
	case PassingYards:
		return "passing yards"
	case PassingTDs:
		return "passing touchdowns"
	case RushingYards:
		return "rushing yards"
	case RushingTDs:
		return "rushing touchdowns"
	case ReceivingReceptions:
		return "receptions"
	case ReceivingYards:
		return "receiving yards"
	case ReceivingTDs:
		return "receiving touchdowns"
	}
	return "unknown"
}

// Lookup returns the raw value of field for player on one side. It reports
// false when the category, the player, or a non-empty value at the field's
// position is missing.
func Lookup(side models.SidePlayerStats, field Field, player string) (string, bool) {
	loc, ok := locations[field]
	if !ok || side == nil {
		return "", false
	}
	values, ok := side[loc.category][player]
	if !ok || loc.index >= len(values) || values[loc.index] == "" {
		return "", false
	}
	return values[loc.index], true
}

// ParseInt reads the leading integer of a raw stat value, so "24/35"
// yields 24. Values without a leading integer yield 0; values too large for
// an int saturate at math.MaxInt.
func ParseInt(raw string) int {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	neg := false
	if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
		neg = raw[i] == '-'
		i++
	}
	n := 0
	for ; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
		d := int(raw[i] - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}
