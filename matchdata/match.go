// Package matchdata loads the match table from its CSV backing store into
// typed records and writes admin edits back to it.
package matchdata

import (
	"strings"
	"time"
)

const (
	// RosterSize is the number of player slots per match.
	RosterSize = 22
	// StarterSlots is the number of leading slots that form the starting XI.
	StarterSlots = 11
)

// Result is the normalized single-letter result code of a match.
type Result string

const (
	Win     Result = "W"
	Draw    Result = "D"
	Loss    Result = "L"
	Unknown Result = ""
)

// ParseResult normalizes a free-text result ("Win", "draw", "Lose") to its
// code. Anything not starting with W, D or L is Unknown.
func ParseResult(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}
	switch strings.ToUpper(raw[:1]) {
	case "W":
		return Win
	case "D":
		return Draw
	case "L":
		return Loss
	}
	return Unknown
}

// Known reports whether r is one of W, D or L.
func (r Result) Known() bool {
	return r == Win || r == Draw || r == Loss
}

// Label returns the word used in the CSV for r.
func (r Result) Label() string {
	switch r {
	case Win:
		return "Win"
	case Draw:
		return "Draw"
	case Loss:
		return "Lose"
	}
	return ""
}

// Match is one fixture.
type Match struct {
	// Row is the zero-based data row in the backing CSV.
	Row         int       `json:"row"`
	Date        time.Time `json:"date"`
	Opponent    string    `json:"opponent"`
	Competition string    `json:"competition"`
	Season      string    `json:"season"`
	Score       string    `json:"score"`
	Result      Result    `json:"result"`
	// Roster slots 1-11 are indices 0-10, subs 12-22 are indices 11-21.
	// An empty string is an empty slot.
	Roster [RosterSize]string `json:"roster"`
}

// Dated reports whether the match has a resolvable date.
func (m Match) Dated() bool {
	return !m.Date.IsZero()
}

// Starters returns the starting slots.
func (m Match) Starters() []string {
	return m.Roster[:StarterSlots]
}

// Subs returns the bench slots.
func (m Match) Subs() []string {
	return m.Roster[StarterSlots:]
}

// Started reports whether player occupies a starting slot.
func (m Match) Started(player string) bool {
	return player != "" && contains(m.Starters(), player)
}

// Played reports whether player occupies any slot.
func (m Match) Played(player string) bool {
	return player != "" && contains(m.Roster[:], player)
}

// Label is the human-readable identifier used by the admin edit picker.
func (m Match) Label() string {
	date := "undated"
	if m.Dated() {
		date = m.Date.Format("2006-01-02")
	}
	return date + " vs " + m.Opponent + " (" + m.Competition + ")"
}

func contains(slots []string, player string) bool {
	for _, s := range slots {
		if s == player {
			return true
		}
	}
	return false
}

// CleanName trims a roster value and maps the "nan"/"none" placeholders left
// behind by spreadsheet exports to the empty slot.
func CleanName(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}
