package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ibrox-analytics/matchdata"
	"ibrox-analytics/stats"
)

// styles used by the terminal reports.
type styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Win     lipgloss.Style
	Draw    lipgloss.Style
	Loss    lipgloss.Style
}

func newStyles() styles {
	return styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")),
		Header2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Win:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Draw:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Loss:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

func (s styles) result(r matchdata.Result) string {
	switch r {
	case matchdata.Win:
		return s.Win.Render("W")
	case matchdata.Draw:
		return s.Draw.Render("D")
	case matchdata.Loss:
		return s.Loss.Render("L")
	}
	return s.Muted.Render("?")
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderGroups(w io.Writer, first string, groups []stats.Group) {
	t := newTable(w)
	t.AppendHeader(table.Row{first, "Played", "W", "D", "L", "Win rate"})
	for _, g := range groups {
		t.AppendRow(table.Row{g.Name, g.Played, g.Record.Wins, g.Record.Draws, g.Record.Losses, pct(g.WinRate)})
	}
	t.Render()
}

func renderPlayerLines(w io.Writer, lines []stats.PlayerLine) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Player", "Apps", "Wins", "Win rate"})
	for i, l := range lines {
		t.AppendRow(table.Row{i + 1, l.Name, l.Appearances, l.Wins, pct(l.WinRate)})
	}
	t.Render()
}

// reportDataset loads the dataset and the report filter.
func reportDataset(cmd *cobra.Command, app *App) (*matchdata.Dataset, stats.Filter, error) {
	ds, err := app.snapshot(cmd.Context())
	if err != nil {
		return nil, stats.Filter{}, err
	}
	if n := len(ds.Rejected); n > 0 {
		app.logger.Warn("skipped unreadable rows", "count", n)
	}
	return ds, app.cfg.Filter(), nil
}

func filterLabel(f stats.Filter) string {
	var parts []string
	if f.Season != "" {
		parts = append(parts, f.Season)
	}
	if f.Competition != "" {
		parts = append(parts, f.Competition)
	}
	if len(parts) == 0 {
		return "all matches"
	}
	return strings.Join(parts, ", ")
}

func newPlayerCmd() *cobra.Command {
	var matches int

	cmd := &cobra.Command{
		Use:   "player NAME",
		Short: "Show a player's record, form and partnerships",
		Example: `  ibrox player "James Tavernier"
  ibrox player Goldson --season 2023/24`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				ds, f, err := reportDataset(cmd, app)
				if err != nil {
					return err
				}
				name := matchdata.CleanName(args[0])
				if !ds.HasPlayer(name) {
					return fmt.Errorf("no appearances recorded for %q", name)
				}
				s := app.playerSummary(ds, f, name)
				writePlayerReport(cmd.OutOrStdout(), s, f, matches)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&matches, "matches", "n", 10, "Number of recent matches to list")

	return cmd
}

func writePlayerReport(w io.Writer, s stats.PlayerSummary, f stats.Filter, recent int) {
	st := newStyles()
	_, _ = fmt.Fprintln(w, st.Header1.Render(fmt.Sprintf("%s (%s)", s.Player, s.Status)))
	_, _ = fmt.Fprintln(w, st.Muted.Render(filterLabel(f)))
	if s.Roles.Total == 0 {
		_, _ = fmt.Fprintln(w, "No appearances for this selection.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Apps", "Starts", "Subs", "W", "D", "L", "Win rate", "Momentum", "Streak"})
	streak := "-"
	if s.Streak.Length > 0 {
		streak = strconv.Itoa(s.Streak.Length) + string(s.Streak.Result)
	}
	t.AppendRow(table.Row{
		s.Roles.Total, s.Roles.Starts, s.Roles.Subs,
		s.Record.Wins, s.Record.Draws, s.Record.Losses,
		pct(s.WinRate), s.Momentum, streak,
	})
	t.Render()

	form := make([]string, 0, len(s.Form))
	for _, r := range s.Form {
		form = append(form, st.result(r))
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", st.Bold.Render("Form:"), strings.Join(form, " "))
	if s.BestPartner != nil {
		_, _ = fmt.Fprintf(w, "%s %s (%d starts together, %s)\n", st.Bold.Render("Best partner:"),
			s.BestPartner.Name, s.BestPartner.Games, pct(s.BestPartner.WinRate))
	}

	_, _ = fmt.Fprintln(w, st.Header2.Render("By competition"))
	renderGroups(w, "Competition", s.Competitions)

	if len(s.Teammates) > 0 {
		_, _ = fmt.Fprintln(w, st.Header2.Render("Most frequent starting partners"))
		t := newTable(w)
		t.AppendHeader(table.Row{"Teammate", "Starts together", "Wins", "Win rate"})
		for _, p := range s.Teammates {
			t.AppendRow(table.Row{p.Name, p.Games, p.Wins, pct(p.WinRate)})
		}
		t.Render()
	}

	if recent > 0 {
		_, _ = fmt.Fprintln(w, st.Header2.Render("Recent matches"))
		t := newTable(w)
		t.AppendHeader(table.Row{"Date", "Opponent", "Competition", "Score", "Result", "Role"})
		for i, m := range s.Matches {
			if i == recent {
				break
			}
			date := "-"
			if m.Dated() {
				date = m.Date.Format("02 Jan 2006")
			}
			t.AppendRow(table.Row{date, m.Opponent, m.Competition, m.Score, st.result(m.Result), m.Role})
		}
		t.Render()
	}
}

func newH2HCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "h2h PLAYER PLAYER",
		Short: "Compare two players",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				ds, f, err := reportDataset(cmd, app)
				if err != nil {
					return err
				}
				a, b := matchdata.CleanName(args[0]), matchdata.CleanName(args[1])
				if a == b {
					return fmt.Errorf("pick two different players")
				}
				for _, p := range []string{a, b} {
					if !ds.HasPlayer(p) {
						return fmt.Errorf("no appearances recorded for %q", p)
					}
				}
				writeH2HReport(cmd.OutOrStdout(), app.compare(ds, f, a, b), f)
				return nil
			})
		},
	}
}

func writeH2HReport(w io.Writer, h stats.HeadToHead, f stats.Filter) {
	st := newStyles()
	_, _ = fmt.Fprintln(w, st.Header1.Render(h.A.Player+" vs "+h.B.Player))
	_, _ = fmt.Fprintln(w, st.Muted.Render(filterLabel(f)))

	t := newTable(w)
	t.AppendHeader(table.Row{"", h.A.Player, h.B.Player})
	t.AppendRow(table.Row{"Appearances", h.A.Roles.Total, h.B.Roles.Total})
	t.AppendRow(table.Row{"Starts", h.A.Roles.Starts, h.B.Roles.Starts})
	t.AppendRow(table.Row{"Wins", h.A.Record.Wins, h.B.Record.Wins})
	t.AppendRow(table.Row{"Draws", h.A.Record.Draws, h.B.Record.Draws})
	t.AppendRow(table.Row{"Losses", h.A.Record.Losses, h.B.Record.Losses})
	t.AppendRow(table.Row{"Win rate", pct(h.A.WinRate), pct(h.B.WinRate)})
	t.AppendRow(table.Row{"Momentum", h.A.Momentum, h.B.Momentum})
	t.Render()

	if leader := h.Leader(); leader != "" {
		_, _ = fmt.Fprintf(w, "%s has the higher win rate.\n", st.Bold.Render(leader))
	} else {
		_, _ = fmt.Fprintln(w, "Level on win rate.")
	}
	_, _ = fmt.Fprintf(w, "Together: %d games, %s win rate. Started together: %d, %s win rate.\n",
		h.TogetherLine.Played, pct(h.TogetherLine.WinRate), h.Partnership.Games, pct(h.Partnership.WinRate))
}

func newTeamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Show team records by competition and opponent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				ds, f, err := reportDataset(cmd, app)
				if err != nil {
					return err
				}
				ms := f.Apply(ds.Matches)
				w := cmd.OutOrStdout()
				st := newStyles()

				rec := stats.TeamRecord(ms)
				_, _ = fmt.Fprintln(w, st.Header1.Render("Rangers: "+filterLabel(f)))
				_, _ = fmt.Fprintf(w, "%d matches, %d-%d-%d, %s win rate\n",
					rec.Played, rec.Record.Wins, rec.Record.Draws, rec.Record.Losses, pct(rec.WinRate))

				_, _ = fmt.Fprintln(w, st.Header2.Render("By competition"))
				renderGroups(w, "Competition", stats.ByCompetition(ms))
				_, _ = fmt.Fprintln(w, st.Header2.Render("Most played opponents"))
				renderGroups(w, "Opponent", stats.ByOpponent(ms, topOpponents))
				_, _ = fmt.Fprintln(w, st.Header2.Render("Most appearances"))
				renderPlayerLines(w, stats.AppearanceRanking(ms, topAppearances))
				_, _ = fmt.Fprintln(w, st.Header2.Render(fmt.Sprintf("Best win rates (%d+ apps)", minWinRateMatches)))
				renderPlayerLines(w, stats.BestWinRates(ms, minWinRateMatches, topWinRates))
				return nil
			})
		},
	}
}

func newSeasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season [TAG]",
		Short: "Show a season's points progression",
		Long:  `Show a season's points progression. Without TAG the latest season is used.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				ds, f, err := reportDataset(cmd, app)
				if err != nil {
					return err
				}
				season := f.Season
				if len(args) == 1 {
					season = strings.TrimSpace(args[0])
				}
				if season == "" {
					if len(ds.Seasons) == 0 {
						return fmt.Errorf("no seasons in %s", app.store.Path())
					}
					season = ds.Seasons[0]
				}
				ms := stats.Filter{Season: season}.Apply(ds.Matches)
				if len(ms) == 0 {
					return fmt.Errorf("no matches tagged %q", season)
				}

				w := cmd.OutOrStdout()
				st := newStyles()
				_, _ = fmt.Fprintln(w, st.Header1.Render("Season "+season))

				t := newTable(w)
				t.AppendHeader(table.Row{"#", "Date", "Opponent", "Result", "Points", "Points %"})
				for _, p := range stats.SeasonTimeline(ms) {
					t.AppendRow(table.Row{p.Number, p.Date.Format("02 Jan 2006"), p.Opponent, st.result(p.Result), p.Cumulative, pct(p.PointsPct)})
				}
				t.Render()

				_, _ = fmt.Fprintln(w, st.Header2.Render("By competition"))
				renderGroups(w, "Competition", stats.ByCompetition(ms))
				return nil
			})
		},
	}
}
