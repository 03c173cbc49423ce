package stats

import (
	"sort"
	"time"

	"ibrox-analytics/matchdata"
)

// Filter narrows matches to a season and/or competition. Empty fields match
// everything.
type Filter struct {
	Season      string `json:"season,omitempty"`
	Competition string `json:"competition,omitempty"`
}

// Apply returns the matches that pass f, in input order.
func (f Filter) Apply(matches []matchdata.Match) []matchdata.Match {
	if f.Season == "" && f.Competition == "" {
		return matches
	}
	out := make([]matchdata.Match, 0, len(matches))
	for _, m := range matches {
		if f.Season != "" && m.Season != f.Season {
			continue
		}
		if f.Competition != "" && m.Competition != f.Competition {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Group is a record line for one label (competition, opponent, month).
type Group struct {
	Name string `json:"name"`
	RecordLine
}

// TeamRecord is the record over every match.
func TeamRecord(matches []matchdata.Match) RecordLine {
	return recordLine(matches)
}

func groupBy(matches []matchdata.Match, key func(matchdata.Match) (string, bool)) []Group {
	var order []string
	buckets := map[string][]matchdata.Match{}
	for _, m := range matches {
		k, ok := key(m)
		if !ok {
			continue
		}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], m)
	}
	out := make([]Group, 0, len(order))
	for _, k := range order {
		out = append(out, Group{Name: k, RecordLine: recordLine(buckets[k])})
	}
	return out
}

func byPlayedDesc(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Played != groups[j].Played {
			return groups[i].Played > groups[j].Played
		}
		return groups[i].Name < groups[j].Name
	})
}

// ByCompetition groups matches by competition, most played first.
func ByCompetition(matches []matchdata.Match) []Group {
	g := groupBy(matches, func(m matchdata.Match) (string, bool) { return m.Competition, true })
	byPlayedDesc(g)
	return g
}

// ByOpponent groups matches by opponent, most played first, keeping topN
// (all when topN <= 0).
func ByOpponent(matches []matchdata.Match, topN int) []Group {
	g := groupBy(matches, func(m matchdata.Match) (string, bool) { return m.Opponent, true })
	byPlayedDesc(g)
	if topN > 0 && len(g) > topN {
		g = g[:topN]
	}
	return g
}

// Monthly groups dated matches by calendar month, oldest first. Names are
// "2006-01".
func Monthly(matches []matchdata.Match) []Group {
	g := groupBy(matches, func(m matchdata.Match) (string, bool) {
		if !m.Dated() {
			return "", false
		}
		return m.Date.Format("2006-01"), true
	})
	sort.Slice(g, func(i, j int) bool { return g[i].Name < g[j].Name })
	return g
}

// PlayerLine is a player's appearance count and win rate over some matches.
type PlayerLine struct {
	Name        string  `json:"name"`
	Appearances int     `json:"appearances"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

func playerLines(matches []matchdata.Match) []PlayerLine {
	idx := map[string]int{}
	var out []PlayerLine
	for _, m := range matches {
		seen := map[string]bool{}
		for _, p := range m.Roster {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			i, ok := idx[p]
			if !ok {
				i = len(out)
				idx[p] = i
				out = append(out, PlayerLine{Name: p})
			}
			out[i].Appearances++
			if m.Result == matchdata.Win {
				out[i].Wins++
			}
		}
	}
	for i := range out {
		out[i].WinRate = WinRate(out[i].Wins, out[i].Appearances)
	}
	return out
}

// AppearanceRanking lists players by appearances, most first, keeping topN
// (all when topN <= 0).
func AppearanceRanking(matches []matchdata.Match, topN int) []PlayerLine {
	lines := playerLines(matches)
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Appearances != lines[j].Appearances {
			return lines[i].Appearances > lines[j].Appearances
		}
		return lines[i].Name < lines[j].Name
	})
	if topN > 0 && len(lines) > topN {
		lines = lines[:topN]
	}
	return lines
}

// BestWinRates lists players with at least minGames appearances by win
// rate, highest first, keeping topN (all when topN <= 0).
func BestWinRates(matches []matchdata.Match, minGames, topN int) []PlayerLine {
	var lines []PlayerLine
	for _, l := range playerLines(matches) {
		if l.Appearances >= minGames {
			lines = append(lines, l)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Appearances != b.Appearances {
			return a.Appearances > b.Appearances
		}
		return a.Name < b.Name
	})
	if topN > 0 && len(lines) > topN {
		lines = lines[:topN]
	}
	return lines
}

// Points awarded per result in the season timeline.
func Points(r matchdata.Result) int {
	switch r {
	case matchdata.Win:
		return 3
	case matchdata.Draw:
		return 1
	}
	return 0
}

// TimelinePoint is one match of a season's running points tally.
type TimelinePoint struct {
	Number     int              `json:"number"`
	Date       time.Time        `json:"date"`
	Opponent   string           `json:"opponent"`
	Result     matchdata.Result `json:"result"`
	Points     int              `json:"points"`
	Cumulative int              `json:"cumulative"`
	PointsPct  float64          `json:"points_pct"`
}

// SeasonTimeline accumulates points over the dated matches in date order.
// PointsPct is the share of the maximum possible points so far.
func SeasonTimeline(matches []matchdata.Match) []TimelinePoint {
	dated := ByDateDesc(matches)
	out := make([]TimelinePoint, 0, len(dated))
	total := 0
	for i := len(dated) - 1; i >= 0; i-- {
		m := dated[i]
		pts := Points(m.Result)
		total += pts
		n := len(out) + 1
		out = append(out, TimelinePoint{
			Number:     n,
			Date:       m.Date,
			Opponent:   m.Opponent,
			Result:     m.Result,
			Points:     pts,
			Cumulative: total,
			PointsPct:  WinRate(total, 3*n),
		})
	}
	return out
}
