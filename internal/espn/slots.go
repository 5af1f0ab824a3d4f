package espn

import (
	"time"
	_ "time/tzdata"
)

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EDT", -4*60*60)
	}
	return loc
}

// TimeSlot groups a kickoff into the window bettors pick slates from.
// Kickoffs outside the named windows are labeled with their Eastern clock time.
func TimeSlot(kickoff time.Time) string {
	et := kickoff.In(eastern)
	hour := et.Hour()

	switch {
	case hour >= 9 && hour < 13:
		return "Early Games"
	case hour >= 13 && hour < 16:
		return "1PM Slot"
	case hour >= 16 && hour < 19:
		return "4PM Slot"
	case hour >= 20 && et.Weekday() == time.Sunday:
		return "SNF"
	case hour >= 20 && et.Weekday() == time.Monday:
		return "MNF"
	}
	return et.Format("3:04 PM")
}
