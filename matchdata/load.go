package matchdata

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

// RowError describes a data row the loader refused to hand to the engine.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row+1, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Dataset is one parsed snapshot of the backing store.
type Dataset struct {
	// Matches are ordered by date descending; undated matches come last.
	Matches      []Match
	Players      []string
	Seasons      []string
	Competitions []string
	Opponents    []string
	Rejected     []RowError
	// Version identifies the store state this snapshot was read from.
	Version uint64
}

// Load reads and parses a CSV match table.
func Load(r io.Reader) (*Dataset, error) {
	t, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return Parse(t)
}

// Parse converts a raw table into typed matches and builds the derived
// player, season, competition and opponent indices.
func Parse(t *Table) (*Dataset, error) {
	cols := map[string]int{}
	for _, name := range []string{ColDay, ColMonth, ColYear, ColResult} {
		i := t.Index(name)
		if i < 0 && len(t.Rows) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[name] = i
	}
	for _, name := range []string{ColOpponent, ColCompetition, ColScore, ColSeason} {
		cols[name] = t.Index(name)
	}
	roster := make([]int, RosterSize)
	for i := range roster {
		roster[i] = t.Index(RosterColumn(i + 1))
	}

	field := func(row []string, name string) string {
		i := cols[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ds := &Dataset{Matches: make([]Match, 0, len(t.Rows))}
	for n, row := range t.Rows {
		date, err := parseDate(field(row, ColDay), field(row, ColMonth), field(row, ColYear))
		if err != nil {
			ds.Rejected = append(ds.Rejected, RowError{Row: n, Err: err})
			continue
		}
		m := Match{
			Row:         n,
			Date:        date,
			Opponent:    field(row, ColOpponent),
			Competition: field(row, ColCompetition),
			Season:      field(row, ColSeason),
			Score:       field(row, ColScore),
			Result:      ParseResult(field(row, ColResult)),
		}
		for slot, i := range roster {
			if i >= 0 && i < len(row) {
				m.Roster[slot] = CleanName(row[i])
			}
		}
		ds.Matches = append(ds.Matches, m)
	}

	sort.SliceStable(ds.Matches, func(i, j int) bool {
		a, b := ds.Matches[i], ds.Matches[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.Date.After(b.Date)
	})
	ds.index()
	return ds, nil
}

func (ds *Dataset) index() {
	players := map[string]struct{}{}
	seasons := map[string]struct{}{}
	comps := map[string]struct{}{}
	opps := map[string]struct{}{}
	for _, m := range ds.Matches {
		for _, p := range m.Roster {
			if p != "" {
				players[p] = struct{}{}
			}
		}
		if m.Season != "" {
			seasons[m.Season] = struct{}{}
		}
		if m.Competition != "" {
			comps[m.Competition] = struct{}{}
		}
		if m.Opponent != "" {
			opps[m.Opponent] = struct{}{}
		}
	}
	ds.Players = sortedKeys(players)
	ds.Seasons = sortedKeys(seasons)
	sort.Sort(sort.Reverse(sort.StringSlice(ds.Seasons)))
	ds.Competitions = sortedKeys(comps)
	ds.Opponents = sortedKeys(opps)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasPlayer reports whether name appears in the player index.
func (ds *Dataset) HasPlayer(name string) bool {
	i := sort.SearchStrings(ds.Players, name)
	return i < len(ds.Players) && ds.Players[i] == name
}

// MatchAt returns the match parsed from the given CSV row.
func (ds *Dataset) MatchAt(row int) (Match, bool) {
	for _, m := range ds.Matches {
		if m.Row == row {
			return m, true
		}
	}
	return Match{}, false
}

// parseDate builds a calendar date from the Day/Month/Year cells.
// Non-numeric cells are an error. Numeric values that do not form a real
// date (such as 0/0/0) return the zero time without error.
func parseDate(day, month, year string) (time.Time, error) {
	d, err := parseNumber(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("day %q: %w", day, err)
	}
	m, err := parseMonth(month)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: %w", month, err)
	}
	y, err := parseNumber(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("year %q: %w", year, err)
	}
	if y <= 0 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, nil
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m || t.Year() != y {
		return time.Time{}, nil
	}
	return t, nil
}

// parseNumber accepts integers, including the "12.0" form spreadsheet tools
// produce for integer columns with gaps.
func parseNumber(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	return strconv.Atoi(s)
}

// parseMonth accepts a month number or an English month name ("Jan", "january").
func parseMonth(s string) (int, error) {
	if n, err := parseNumber(s); err == nil {
		return n, nil
	}
	name := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
	for _, layout := range []string{"Jan", "January"} {
		if t, err := time.Parse(layout, name); err == nil {
			return int(t.Month()), nil
		}
	}
	return 0, errors.New("not a month")
}
