package scrape

import (
	"strings"
	"time"
)

// Game is one schedule entry derived from a parsed row. Games are
// derived fresh on every call and never persisted.
type Game struct {
	Date      string    `json:"date"`
	Opponent  string    `json:"opponent"`
	IsHome    bool      `json:"isHome"`
	Timestamp time.Time `json:"timestamp"`
}

// ticketMarker appears in the row text of games that have not been
// played yet: the schedule page renders a ticket-purchase link for them.
const ticketMarker = "ticket"

// scheduleDateFormats covers the date cells the schedule page uses.
// Cells without a year are pinned to the current year.
var scheduleDateFormats = []string{
	"Mon, Jan 2, 2006",
	"Jan 2, 2006",
	"Mon, Jan 2",
	"Jan 2",
}

// NextGame returns the first row in document order with a parseable
// date and a ticket marker. The scan short-circuits on the first match;
// rows whose date cell is not a date (headers, promos) are skipped.
// Returns false when no row qualifies.
func NextGame(rows []Row) (Game, bool) {
	for _, row := range rows {
		ts, ok := ParseScheduleDate(row.DateText)
		if !ok {
			continue
		}

		if !strings.Contains(strings.ToLower(row.RowText), ticketMarker) {
			continue
		}

		return newGame(row, ts), true
	}

	return Game{}, false
}

// FirstGameAfter returns the scheduled game following ref. The scan
// keeps overwriting its candidate with every later row whose date
// exceeds ref, so the last matching row in document order wins. The
// schedule table is published in ascending date order, which makes that
// last match the game closest to the end of the schedule rather than
// the one closest to ref; callers relying on a single upcoming game are
// unaffected. Returns false when no row's date exceeds ref.
func FirstGameAfter(rows []Row, ref time.Time) (Game, bool) {
	var match Game
	found := false

	for _, row := range rows {
		ts, ok := ParseScheduleDate(row.DateText)
		if !ok {
			continue
		}

		if ts.After(ref) {
			match = newGame(row, ts)
			found = true
		}
	}

	return match, found
}

// LastCompleted returns up to count completed games. A row counts as
// completed when its date is strictly before now and its results column
// is non-empty. Games come back in document order and the slice is
// truncated from the front — document-order truncation, not a sort by
// recency. The source table is in ascending date order, so this only
// approximates "most recent" for the trailing segment of the season.
func LastCompleted(rows []Row, count int, now time.Time) []Game {
	games := make([]Game, 0)

	for _, row := range rows {
		ts, ok := ParseScheduleDate(row.DateText)
		if !ok {
			continue
		}

		if ts.Before(now) && row.ResultText != "" {
			games = append(games, newGame(row, ts))
		}
	}

	if len(games) > count {
		games = games[:count]
	}

	return games
}

// ParseScheduleDate parses a schedule date cell such as "Sat, Jan 25".
// Returns false for text that is not a date.
func ParseScheduleDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range scheduleDateFormats {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}

		if t.Year() == 0 {
			now := time.Now()
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}

		return t, true
	}

	return time.Time{}, false
}

// NormalizeOpponent strips the leading away ("@ ") and home ("vs ")
// markers from an opponent cell.
func NormalizeOpponent(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "@ ")
	text = strings.TrimPrefix(text, "vs ")
	return text
}

func newGame(row Row, ts time.Time) Game {
	return Game{
		Date:      ts.Format("Mon Jan 2 2006"),
		Opponent:  NormalizeOpponent(row.OpponentText),
		IsHome:    !strings.Contains(row.OpponentText, "@"),
		Timestamp: ts,
	}
}
