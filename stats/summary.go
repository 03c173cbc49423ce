package stats

import "ibrox-analytics/matchdata"

// Options tunes the policy knobs of a player summary.
type Options struct {
	MomentumWindow  int
	MinPartnerGames int
	TopTeammates    int
	FormLength      int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		MomentumWindow:  DefaultMomentumWindow,
		MinPartnerGames: DefaultMinPartnerGames,
		TopTeammates:    10,
		FormLength:      10,
	}
}

// Appearance is one match of a player together with their role in it.
type Appearance struct {
	matchdata.Match
	Role Role `json:"role"`
}

// PlayerSummary is everything the player dashboard shows for one player.
type PlayerSummary struct {
	Player   string  `json:"player"`
	Roles    Roles   `json:"roles"`
	Record   Record  `json:"record"`
	WinRate  float64 `json:"win_rate"`
	StartPct float64 `json:"start_pct"`
	Streak   Streak  `json:"streak"`
	Momentum int     `json:"momentum"`
	Status   string  `json:"status"`

	AsStarter RecordLine `json:"as_starter"`
	AsSub     RecordLine `json:"as_sub"`

	Competitions []Group            `json:"competitions"`
	Timeline     []Group            `json:"timeline"`
	Form         []matchdata.Result `json:"form"`
	FormWinRate  float64            `json:"form_win_rate"`

	Teammates   []Partner `json:"teammates"`
	BestPartner *Partner  `json:"best_partner,omitempty"`

	Matches []Appearance `json:"matches"`
}

// Summarize computes the full dashboard summary of player over matches.
// Win rate is measured against total appearances, so matches with an
// unknown result lower it without showing up in the record.
func Summarize(matches []matchdata.Match, player string, opts Options) PlayerSummary {
	apps := Appearances(matches, player)
	s := PlayerSummary{
		Player:   player,
		Roles:    RoleBreakdown(apps, player),
		Record:   ResultRecord(apps),
		Streak:   FormStreak(apps),
		Momentum: MomentumScore(apps, opts.MomentumWindow),
	}
	s.WinRate = WinRate(s.Record.Wins, s.Roles.Total)
	s.StartPct = WinRate(s.Roles.Starts, s.Roles.Total)
	s.Status = Status(s.WinRate, s.Roles.Total)

	var starts, subs []matchdata.Match
	s.Matches = make([]Appearance, 0, len(apps))
	for _, m := range apps {
		role, _ := RoleOf(m, player)
		if role == Starter {
			starts = append(starts, m)
		} else {
			subs = append(subs, m)
		}
		s.Matches = append(s.Matches, Appearance{Match: m, Role: role})
	}
	s.AsStarter = recordLine(starts)
	s.AsSub = recordLine(subs)

	s.Competitions = ByCompetition(apps)
	s.Timeline = Monthly(apps)
	s.Form = RecentForm(apps, opts.FormLength)
	wins := 0
	for _, r := range s.Form {
		if r == matchdata.Win {
			wins++
		}
	}
	s.FormWinRate = WinRate(wins, len(s.Form))

	s.Teammates = TeammateFrequency(starts, player, opts.TopTeammates)
	if p, ok := BestPartner(matches, player, opts.MinPartnerGames); ok {
		s.BestPartner = &p
	}
	return s
}

// Status is the badge shown next to a player's name.
func Status(winRate float64, total int) string {
	switch {
	case winRate > 75:
		return "Elite"
	case winRate > 60:
		return "Star"
	case total > 100:
		return "Legend"
	}
	return "Squad"
}

// HeadToHead compares two players over the same matches.
type HeadToHead struct {
	A PlayerSummary `json:"a"`
	B PlayerSummary `json:"b"`
	// Together is every match both appeared in, in any slot.
	Together     []matchdata.Match `json:"together"`
	TogetherLine RecordLine        `json:"together_line"`
	// Partnership only counts matches both started.
	Partnership Partnership `json:"partnership"`
}

// Leader returns the name of the player with the higher win rate, or "" on
// a tie.
func (h HeadToHead) Leader() string {
	switch {
	case h.A.WinRate > h.B.WinRate:
		return h.A.Player
	case h.B.WinRate > h.A.WinRate:
		return h.B.Player
	}
	return ""
}

// Compare builds the head-to-head view of a and b.
func Compare(matches []matchdata.Match, a, b string, opts Options) HeadToHead {
	together := GamesTogether(matches, a, b)
	return HeadToHead{
		A:            Summarize(matches, a, opts),
		B:            Summarize(matches, b, opts),
		Together:     together,
		TogetherLine: recordLine(together),
		Partnership:  PartnershipStrength(matches, a, b),
	}
}
