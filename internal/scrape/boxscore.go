package scrape

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// pointsColumn is the index of the PTS column in the game log table.
// PTS is the final column of ESPN's game log layout; if the layout
// changes this stops matching and reconciliation reports "not yet
// available" instead of writing a wrong value.
const pointsColumn = 16

// gameLogDateFormats covers the date cells the game log page uses,
// with the season year already appended.
var gameLogDateFormats = []string{
	"Mon 1/2/2006",
	"1/2/2006",
	"Jan 2 2006",
}

// PointsForDate scans game log rows for the one played on gameDate and
// returns its point total. Game log date cells carry no year, so
// seasonYear is appended before parsing and only the calendar date is
// compared. Returns false when no row matches, the points cell is
// missing, or it parses to zero — callers treat all three as "not yet
// available".
func PointsForDate(rows []Row, gameDate time.Time, seasonYear int) (int, bool) {
	for _, row := range rows {
		ts, ok := ParseGameLogDate(row.DateText, seasonYear)
		if !ok {
			continue
		}

		if !sameDay(ts, gameDate) {
			continue
		}

		if len(row.Cells) <= pointsColumn {
			return 0, false
		}

		pts, err := strconv.Atoi(strings.TrimSpace(row.Cells[pointsColumn]))
		if err != nil || pts == 0 {
			return 0, false
		}

		return pts, true
	}

	return 0, false
}

// ParseGameLogDate parses a game log date cell such as "Wed 1/15" or
// "Jan 15", disambiguated with seasonYear. Returns false for text that
// is not a date.
func ParseGameLogDate(text string, seasonYear int) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	candidates := []string{
		fmt.Sprintf("%s/%d", text, seasonYear),
		fmt.Sprintf("%s %d", text, seasonYear),
	}

	for _, layout := range gameLogDateFormats {
		for _, candidate := range candidates {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
