// Package stats aggregates match records into per-player, per-partnership
// and team statistics. Every function is a pure function of its arguments:
// degenerate input (no matches, no starts, unknown results) produces a
// zero or neutral value, never an error.
package stats

import "ibrox-analytics/matchdata"

// Role is a player's classification for one match.
type Role string

const (
	Starter Role = "Starter"
	Sub     Role = "Sub"
)

// Roles counts a player's appearances by role.
type Roles struct {
	Starts int `json:"starts"`
	Subs   int `json:"subs"`
	Total  int `json:"total"`
}

// Record counts W/D/L results. Matches with an unknown result are in none
// of the three counts.
type Record struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// Decided returns Wins+Draws+Losses.
func (r Record) Decided() int {
	return r.Wins + r.Draws + r.Losses
}

// RoleOf classifies player in m. A player listed in both a starting and a
// bench slot is a Starter. The second result is false when the player did
// not appear.
func RoleOf(m matchdata.Match, player string) (Role, bool) {
	switch {
	case m.Started(player):
		return Starter, true
	case m.Played(player):
		return Sub, true
	}
	return "", false
}

// Appearances returns the matches in which player occupies any slot, in
// input order.
func Appearances(matches []matchdata.Match, player string) []matchdata.Match {
	var out []matchdata.Match
	for _, m := range matches {
		if m.Played(player) {
			out = append(out, m)
		}
	}
	return out
}

// Starts returns the matches in which player occupies a starting slot.
func Starts(matches []matchdata.Match, player string) []matchdata.Match {
	var out []matchdata.Match
	for _, m := range matches {
		if m.Started(player) {
			out = append(out, m)
		}
	}
	return out
}

// RoleBreakdown counts player's starts and substitute appearances.
func RoleBreakdown(matches []matchdata.Match, player string) Roles {
	var r Roles
	for _, m := range matches {
		role, ok := RoleOf(m, player)
		if !ok {
			continue
		}
		if role == Starter {
			r.Starts++
		} else {
			r.Subs++
		}
	}
	r.Total = r.Starts + r.Subs
	return r
}

// ResultRecord tallies the result codes of matches.
func ResultRecord(matches []matchdata.Match) Record {
	var r Record
	for _, m := range matches {
		switch m.Result {
		case matchdata.Win:
			r.Wins++
		case matchdata.Draw:
			r.Draws++
		case matchdata.Loss:
			r.Losses++
		}
	}
	return r
}

// WinRate returns wins/total as a percentage, 0 when total is 0.
func WinRate(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// RecordLine is a record together with the appearance count it is measured
// against.
type RecordLine struct {
	Played  int     `json:"played"`
	Record  Record  `json:"record"`
	WinRate float64 `json:"win_rate"`
}

func recordLine(matches []matchdata.Match) RecordLine {
	rec := ResultRecord(matches)
	return RecordLine{
		Played:  len(matches),
		Record:  rec,
		WinRate: WinRate(rec.Wins, len(matches)),
	}
}
