package stats

import (
	"math"
	"sort"

	"ibrox-analytics/matchdata"
)

// DefaultMomentumWindow is the number of recent matches momentum looks at.
const DefaultMomentumWindow = 5

// NeutralMomentum is returned when there are too few matches to judge form.
const NeutralMomentum = 50

// MomentumWeights weight the most recent match first. The table is a fixed
// policy; a window longer than the table is clamped to its length.
var MomentumWeights = []float64{1.5, 1.3, 1.1, 1.0, 0.9}

// Streak is a run of identical results ending at the most recent match.
type Streak struct {
	Length int              `json:"length"`
	Result matchdata.Result `json:"result"`
}

// ByDateDesc returns the dated matches ordered newest first. Matches on the
// same date keep their input order.
func ByDateDesc(matches []matchdata.Match) []matchdata.Match {
	out := make([]matchdata.Match, 0, len(matches))
	for _, m := range matches {
		if m.Dated() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// FormStreak counts consecutive identical results going back from the most
// recent dated match with a known result. Undated matches are skipped, and
// unknown results are skipped only until the run starts; after that an
// unknown result ends it like any other mismatch.
func FormStreak(matches []matchdata.Match) Streak {
	var s Streak
	for _, m := range ByDateDesc(matches) {
		if s.Length == 0 {
			if !m.Result.Known() {
				continue
			}
			s.Result = m.Result
		}
		if m.Result != s.Result {
			break
		}
		s.Length++
	}
	return s
}

// MomentumScore is a recency-weighted form indicator in [0, 100] over the
// most recent window dated matches. A win scores 3x its weight and a draw
// 1x; the total is normalized against winning every match in the window.
// With fewer than window dated matches the score is NeutralMomentum.
func MomentumScore(matches []matchdata.Match, window int) int {
	if window <= 0 {
		window = DefaultMomentumWindow
	}
	if window > len(MomentumWeights) {
		window = len(MomentumWeights)
	}
	recent := ByDateDesc(matches)
	if len(recent) < window {
		return NeutralMomentum
	}

	var score, best float64
	for i, m := range recent[:window] {
		w := MomentumWeights[i]
		best += 3 * w
		switch m.Result {
		case matchdata.Win:
			score += 3 * w
		case matchdata.Draw:
			score += w
		}
	}
	if best == 0 {
		return NeutralMomentum
	}
	v := int(math.Round(100 * score / best))
	return min(100, max(0, v))
}

// RecentForm returns the result codes of the n most recent dated matches,
// newest first.
func RecentForm(matches []matchdata.Match, n int) []matchdata.Result {
	recent := ByDateDesc(matches)
	if n >= 0 && len(recent) > n {
		recent = recent[:n]
	}
	out := make([]matchdata.Result, len(recent))
	for i, m := range recent {
		out[i] = m.Result
	}
	return out
}
