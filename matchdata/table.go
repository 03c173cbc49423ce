package matchdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Column names of the backing CSV.
const (
	ColDay         = "Day"
	ColMonth       = "Month"
	ColYear        = "Year"
	ColOpponent    = "Opponent"
	ColCompetition = "Competition"
	ColScore       = "Score (Rangers First)"
	ColResult      = "Win/Lose/Draw"
	ColSeason      = "Tag Season"
)

// columnAliases maps alternative headers to their canonical name.
var columnAliases = map[string]string{
	"score":  ColScore,
	"result": ColResult,
	"season": ColSeason,
}

// RosterColumn returns the header of roster slot i (1-based).
func RosterColumn(i int) string {
	return "R" + strconv.Itoa(i)
}

// DefaultHeader is the header written for a fresh file.
func DefaultHeader() []string {
	h := []string{ColDay, ColMonth, ColYear, ColOpponent, ColCompetition, ColScore, ColResult, ColSeason}
	for i := 1; i <= RosterSize; i++ {
		h = append(h, RosterColumn(i))
	}
	return h
}

// Table is the raw CSV content. Columns the loader does not understand are
// carried through untouched so a rewrite never drops data.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a CSV with a header row. An empty input yields an empty
// table with the default header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Header: DefaultHeader()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, t.pad(rec))
	}
	return t, nil
}

// Write renders the table as CSV.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(t.pad(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// pad widens a short row to the header. Cells past the header are kept.
func (t *Table) pad(rec []string) []string {
	if len(rec) >= len(t.Header) {
		return rec
	}
	out := make([]string, len(t.Header))
	copy(out, rec)
	return out
}

// Index returns the position of the named column, honoring aliases, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	for alias, canonical := range columnAliases {
		if canonical != name {
			continue
		}
		for i, h := range t.Header {
			if strings.EqualFold(h, alias) {
				return i
			}
		}
	}
	return -1
}

// ensureColumn returns the index of name, appending the column (and padding
// every row) when the header lacks it. Trailing cells past the old header
// shift right so they stay after the new column.
func (t *Table) ensureColumn(name string) int {
	if i := t.Index(name); i >= 0 {
		return i
	}
	n := len(t.Header)
	t.Header = append(t.Header, name)
	for i, row := range t.Rows {
		if len(row) > n {
			t.Rows[i] = slices.Insert(row, n, "")
			continue
		}
		t.Rows[i] = append(t.pad(row)[:n], "")
	}
	return n
}

// encode writes m into row and returns the header-sized result.
func (t *Table) encode(row []string, m Match) []string {
	for _, col := range DefaultHeader() {
		t.ensureColumn(col)
	}
	row = t.pad(row)
	set := func(col, v string) {
		row[t.Index(col)] = v
	}

	if m.Dated() {
		set(ColDay, strconv.Itoa(m.Date.Day()))
		set(ColMonth, strconv.Itoa(int(m.Date.Month())))
		set(ColYear, strconv.Itoa(m.Date.Year()))
	}
	set(ColOpponent, m.Opponent)
	set(ColCompetition, m.Competition)
	set(ColScore, m.Score)
	set(ColResult, m.Result.Label())
	set(ColSeason, m.Season)
	for i, p := range m.Roster {
		set(RosterColumn(i+1), p)
	}
	return row
}

// Cell returns the trimmed value of the named column in row i, or "".
func (t *Table) Cell(i int, col string) string {
	c := t.Index(col)
	if i < 0 || i >= len(t.Rows) || c < 0 || c >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][c])
}

// AppendMatch adds m as a new row.
func (t *Table) AppendMatch(m Match) {
	row := t.encode(make([]string, len(t.Header)), m)
	t.Rows = append(t.Rows, row)
}

// UpdateMatch overwrites row i with m. Columns m does not describe keep
// their previous values.
func (t *Table) UpdateMatch(i int, m Match) error {
	if i < 0 || i >= len(t.Rows) {
		return ErrRowNotFound
	}
	row := t.pad(append([]string(nil), t.Rows[i]...))
	t.Rows[i] = t.encode(row, m)
	return nil
}

// DeleteRow removes row i.
func (t *Table) DeleteRow(i int) error {
	if i < 0 || i >= len(t.Rows) {
		return ErrRowNotFound
	}
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
	return nil
}
