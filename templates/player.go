package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"ibrox-analytics/stats"
)

// PlayerPage is the player dashboard.
func PlayerPage(d PlayerPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Players", "/", func(b *builder) {
			b.WriteString(`<form method="get" action="/" class="bg-white rounded-2xl shadow p-4 flex flex-wrap gap-4 items-end">`)
			selectBox(b, "player", "Player", d.Summary.Player, d.Players, "")
			filterSelects(b, d.Filter)
			b.WriteString(`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Show</button>`)
			b.WriteString(`<button name="random" value="1" class="border border-blue-800 text-blue-800 font-bold py-2 px-5 rounded-xl">Random player</button></form>`)
			if d.Rejected > 0 {
				flashes(b, []string{fmt.Sprintf("%d rows of the match table could not be read and are left out.", d.Rejected)})
			}
			if d.Summary.Player == "" {
				card(b, "", func(b *builder) { b.WriteString(`<p>No players in the match table yet.</p>`) })
				return
			}
			playerSummary(b, d)
		})
	})
}

func playerSummary(b *builder, d PlayerPageData) {
	s := d.Summary
	card(b, "", func(b *builder) {
		fmt.Fprintf(b, `<div class="flex items-center gap-3 mb-4"><h1 class="text-3xl font-black">%s</h1><span class="text-xs font-bold uppercase bg-blue-100 text-blue-800 rounded-full px-3 py-1">%s</span>`,
			esc(s.Player), esc(s.Status))
		if d.Found {
			q := url.Values{}
			if d.Filter.Season != "" {
				q.Set("season", d.Filter.Season)
			}
			if d.Filter.Competition != "" {
				q.Set("competition", d.Filter.Competition)
			}
			href := "/players/" + url.PathEscape(s.Player) + "/matches.csv"
			if len(q) > 0 {
				href += "?" + q.Encode()
			}
			fmt.Fprintf(b, `<a class="ml-auto text-sm text-blue-800 underline" href="%s">Download matches</a>`, esc(href))
		}
		b.WriteString(`</div>`)
		if !d.Found {
			b.WriteString(`<p class="text-slate-500">No appearances for this selection.</p>`)
			return
		}

		b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-6 gap-3">`)
		metric(b, "Appearances", strconv.Itoa(s.Roles.Total))
		metric(b, "Starts", fmt.Sprintf("%d (%s)", s.Roles.Starts, Pct(s.StartPct)))
		metric(b, "Sub apps", strconv.Itoa(s.Roles.Subs))
		metric(b, "W-D-L", fmt.Sprintf("%d-%d-%d", s.Record.Wins, s.Record.Draws, s.Record.Losses))
		metric(b, "Win rate", Pct(s.WinRate))
		metric(b, "Momentum", strconv.Itoa(s.Momentum))
		b.WriteString(`</div>`)

		streak := "-"
		if s.Streak.Length > 0 {
			streak = fmt.Sprintf("%d %s", s.Streak.Length, s.Streak.Result.Label())
		}
		fmt.Fprintf(b, `<p class="mt-4 text-sm">Current streak: <strong>%s</strong>. Last %d: `, esc(streak), len(s.Form))
		for _, r := range s.Form {
			b.WriteString(resultBadge(r))
			b.WriteString(" ")
		}
		fmt.Fprintf(b, ` (%s won)</p>`, Pct(s.FormWinRate))
	})

	card(b, "Starter vs substitute", func(b *builder) {
		table(b, []string{"Role", "Played", "W", "D", "L", "Win rate"}, [][]string{
			recordRow("Starter", s.AsStarter),
			recordRow("Substitute", s.AsSub),
		})
	})

	card(b, "Partnerships", func(b *builder) {
		if s.BestPartner != nil {
			fmt.Fprintf(b, `<p class="mb-3">Best partner: <a class="font-bold text-blue-800" href="%s">%s</a>, %s won in %d starts together.</p>`,
				esc(playerHref(s.BestPartner.Name, d.Filter)), esc(s.BestPartner.Name), Pct(s.BestPartner.WinRate), s.BestPartner.Games)
		}
		rows := make([][]string, 0, len(s.Teammates))
		for _, p := range s.Teammates {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.Games), Pct(p.WinRate)})
		}
		table(b, []string{"Teammate", "Starts together", "Win rate"}, rows)
	})

	card(b, "By competition", func(b *builder) {
		table(b, []string{"Competition", "Played", "W", "D", "L", "Win rate"}, groupRows(s.Competitions))
	})

	card(b, "By month", func(b *builder) {
		table(b, []string{"Month", "Played", "W", "D", "L", "Win rate"}, groupRows(s.Timeline))
	})

	card(b, "Matches", func(b *builder) {
		rows := make([][]string, 0, len(s.Matches))
		for _, m := range s.Matches {
			rows = append(rows, []string{DateLabel(m.Match), m.Opponent, m.Competition, m.Score, m.Result.Label(), string(m.Role)})
		}
		table(b, []string{"Date", "Opponent", "Competition", "Score", "Result", "Role"}, rows)
	})
}

func recordRow(name string, l stats.RecordLine) []string {
	return []string{
		name,
		strconv.Itoa(l.Played),
		strconv.Itoa(l.Record.Wins),
		strconv.Itoa(l.Record.Draws),
		strconv.Itoa(l.Record.Losses),
		Pct(l.WinRate),
	}
}

func groupRows(groups []stats.Group) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, recordRow(g.Name, g.RecordLine))
	}
	return rows
}

func playerLineRows(lines []stats.PlayerLine) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Name, strconv.Itoa(l.Appearances), strconv.Itoa(l.Wins), Pct(l.WinRate)})
	}
	return rows
}
