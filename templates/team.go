package templates

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"
)

// TeamPage shows whole-team aggregates.
func TeamPage(d TeamPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Team", "/team", func(b *builder) {
			b.WriteString(`<form method="get" action="/team" class="bg-white rounded-2xl shadow p-4 flex flex-wrap gap-4 items-end">`)
			filterSelects(b, d.Filter)
			b.WriteString(`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Apply</button></form>`)

			card(b, "Overall", func(b *builder) {
				b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-5 gap-3">`)
				metric(b, "Matches", strconv.Itoa(d.Record.Played))
				metric(b, "Wins", strconv.Itoa(d.Record.Record.Wins))
				metric(b, "Draws", strconv.Itoa(d.Record.Record.Draws))
				metric(b, "Losses", strconv.Itoa(d.Record.Record.Losses))
				metric(b, "Win rate", Pct(d.Record.WinRate))
				b.WriteString(`</div>`)
			})
			card(b, "By competition", func(b *builder) {
				table(b, []string{"Competition", "Played", "W", "D", "L", "Win rate"}, groupRows(d.Competitions))
			})
			card(b, "Most played opponents", func(b *builder) {
				table(b, []string{"Opponent", "Played", "W", "D", "L", "Win rate"}, groupRows(d.Opponents))
			})
			card(b, "Most appearances", func(b *builder) {
				table(b, []string{"Player", "Apps", "Wins", "Win rate"}, playerLineRows(d.Appearances))
			})
			card(b, fmt.Sprintf("Best win rates (%d+ apps)", d.MinGames), func(b *builder) {
				table(b, []string{"Player", "Apps", "Wins", "Win rate"}, playerLineRows(d.BestWinRates))
			})
			card(b, "By month", func(b *builder) {
				table(b, []string{"Month", "Played", "W", "D", "L", "Win rate"}, groupRows(d.Monthly))
			})
		})
	})
}

// SeasonPage shows one season's points progression.
func SeasonPage(d SeasonPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Seasons", "/season", func(b *builder) {
			b.WriteString(`<form method="get" action="/season" class="bg-white rounded-2xl shadow p-4 flex flex-wrap gap-4 items-end">`)
			selectBox(b, "season", "Season", d.Season, d.Seasons, "")
			b.WriteString(`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Show</button></form>`)
			if d.Season == "" {
				card(b, "", func(b *builder) { b.WriteString(`<p>No seasons in the match table yet.</p>`) })
				return
			}

			card(b, d.Season, func(b *builder) {
				points := 0
				if n := len(d.Timeline); n > 0 {
					points = d.Timeline[n-1].Cumulative
				}
				b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-4 gap-3">`)
				metric(b, "Matches", strconv.Itoa(d.Record.Played))
				metric(b, "W-D-L", fmt.Sprintf("%d-%d-%d", d.Record.Record.Wins, d.Record.Record.Draws, d.Record.Record.Losses))
				metric(b, "Win rate", Pct(d.Record.WinRate))
				metric(b, "Points", strconv.Itoa(points))
				b.WriteString(`</div>`)
			})
			card(b, "Points progression", func(b *builder) {
				rows := make([][]string, 0, len(d.Timeline))
				for _, p := range d.Timeline {
					rows = append(rows, []string{
						strconv.Itoa(p.Number),
						p.Date.Format("02 Jan 2006"),
						p.Opponent,
						p.Result.Label(),
						strconv.Itoa(p.Cumulative),
						Pct(p.PointsPct),
					})
				}
				table(b, []string{"#", "Date", "Opponent", "Result", "Points", "Points %"}, rows)
			})
			card(b, "By competition", func(b *builder) {
				table(b, []string{"Competition", "Played", "W", "D", "L", "Win rate"}, groupRows(d.Competitions))
			})
			card(b, "Most appearances", func(b *builder) {
				table(b, []string{"Player", "Apps", "Wins", "Win rate"}, playerLineRows(d.Appearances))
			})
		})
	})
}
