package stats

import (
	"sort"

	"ibrox-analytics/matchdata"
)

// DefaultMinPartnerGames is the games-together threshold for BestPartner.
const DefaultMinPartnerGames = 5

// Partnership is how two players fared in the matches they both started.
type Partnership struct {
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// Partner is a teammate of some player with their partnership figures.
type Partner struct {
	Name string `json:"name"`
	Partnership
}

// PartnershipStrength restricts matches to those in which a and b both
// occupy a starting slot and returns the games and win rate together.
// Substitute appearances do not count. The result is symmetric in a and b.
func PartnershipStrength(matches []matchdata.Match, a, b string) Partnership {
	var p Partnership
	for _, m := range matches {
		if m.Started(a) && m.Started(b) {
			p.Games++
			if m.Result == matchdata.Win {
				p.Wins++
			}
		}
	}
	p.WinRate = WinRate(p.Wins, p.Games)
	return p
}

// coStarters returns everyone who started alongside player, ordered by
// first encounter, with the number of shared starts.
func coStarters(matches []matchdata.Match, player string) ([]string, map[string]int) {
	var order []string
	counts := map[string]int{}
	for _, m := range matches {
		if !m.Started(player) {
			continue
		}
		seen := map[string]bool{}
		for _, mate := range m.Starters() {
			if mate == "" || mate == player || seen[mate] {
				continue
			}
			seen[mate] = true
			if _, ok := counts[mate]; !ok {
				order = append(order, mate)
			}
			counts[mate]++
		}
	}
	return order, counts
}

// BestPartner picks the co-starter with whom player has the highest win
// rate. Only partners with at least minGames starts together are eligible,
// unless nobody qualifies, in which case every co-starter is. Ties go to
// more games together, then to the alphabetically first name. The second
// result is false when player never started.
func BestPartner(matches []matchdata.Match, player string, minGames int) (Partner, bool) {
	names, _ := coStarters(matches, player)
	if len(names) == 0 {
		return Partner{}, false
	}

	all := make([]Partner, 0, len(names))
	for _, n := range names {
		all = append(all, Partner{Name: n, Partnership: PartnershipStrength(matches, player, n)})
	}
	pool := make([]Partner, 0, len(all))
	for _, p := range all {
		if p.Games >= minGames {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		pool = all
	}

	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Games != b.Games {
			return a.Games > b.Games
		}
		return a.Name < b.Name
	})
	return pool[0], true
}

// TeammateFrequency returns the topN players who most often started
// alongside player, each with their partnership win rate. Equal counts keep
// first-encounter order. topN <= 0 returns every teammate.
func TeammateFrequency(matches []matchdata.Match, player string, topN int) []Partner {
	names, counts := coStarters(matches, player)
	sort.SliceStable(names, func(i, j int) bool {
		return counts[names[i]] > counts[names[j]]
	})
	if topN > 0 && len(names) > topN {
		names = names[:topN]
	}
	out := make([]Partner, 0, len(names))
	for _, n := range names {
		out = append(out, Partner{Name: n, Partnership: PartnershipStrength(matches, player, n)})
	}
	return out
}

// GamesTogether returns the matches in which a and b both appear in any slot.
func GamesTogether(matches []matchdata.Match, a, b string) []matchdata.Match {
	var out []matchdata.Match
	for _, m := range matches {
		if m.Played(a) && m.Played(b) {
			out = append(out, m)
		}
	}
	return out
}
