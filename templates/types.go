package templates

import (
	"time"

	"ibrox-analytics/matchdata"
	"ibrox-analytics/stats"
)

// FilterData drives the season/competition selectors.
type FilterData struct {
	Seasons      []string
	Competitions []string
	Season       string
	Competition  string
}

type PlayerPageData struct {
	Filter   FilterData
	Players  []string
	Summary  stats.PlayerSummary
	Found    bool
	Rejected int
}

type H2HPageData struct {
	Filter  FilterData
	Players []string
	P1      string
	P2      string
	Result  *stats.HeadToHead
}

type TeamPageData struct {
	Filter       FilterData
	Record       stats.RecordLine
	Competitions []stats.Group
	Opponents    []stats.Group
	Monthly      []stats.Group
	Appearances  []stats.PlayerLine
	BestWinRates []stats.PlayerLine
	MinGames     int
}

type SeasonPageData struct {
	Seasons      []string
	Season       string
	Record       stats.RecordLine
	Competitions []stats.Group
	Timeline     []stats.TimelinePoint
	Appearances  []stats.PlayerLine
}

type EditView struct {
	Action    string
	Row       int
	Label     string
	CreatedAt time.Time
}

type LoginPageData struct {
	Flashes  []string
	Disabled bool
}

type AdminPageData struct {
	Flashes      []string
	DataFile     string
	Version      uint64
	Matches      []matchdata.Match
	Editing      *matchdata.Match
	Players      []string
	Competitions []string
	Seasons      []string
	Edits        []EditView
}
