package templates

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"ibrox-analytics/stats"
)

// H2HPage compares two players side by side.
func H2HPage(d H2HPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Head to Head", "/h2h", func(b *builder) {
			b.WriteString(`<form method="get" action="/h2h" class="bg-white rounded-2xl shadow p-4 flex flex-wrap gap-4 items-end">`)
			selectBox(b, "p1", "Player 1", d.P1, d.Players, "")
			selectBox(b, "p2", "Player 2", d.P2, d.Players, "")
			filterSelects(b, d.Filter)
			b.WriteString(`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Compare</button></form>`)

			h := d.Result
			if h == nil {
				card(b, "", func(b *builder) { b.WriteString(`<p>Pick two different players to compare.</p>`) })
				return
			}

			card(b, "Comparison", func(b *builder) {
				row := func(label string, a, c string) []string { return []string{label, a, c} }
				table(b, []string{"", h.A.Player, h.B.Player}, [][]string{
					row("Appearances", strconv.Itoa(h.A.Roles.Total), strconv.Itoa(h.B.Roles.Total)),
					row("Starts", strconv.Itoa(h.A.Roles.Starts), strconv.Itoa(h.B.Roles.Starts)),
					row("Sub apps", strconv.Itoa(h.A.Roles.Subs), strconv.Itoa(h.B.Roles.Subs)),
					row("Wins", strconv.Itoa(h.A.Record.Wins), strconv.Itoa(h.B.Record.Wins)),
					row("Draws", strconv.Itoa(h.A.Record.Draws), strconv.Itoa(h.B.Record.Draws)),
					row("Losses", strconv.Itoa(h.A.Record.Losses), strconv.Itoa(h.B.Record.Losses)),
					row("Win rate", Pct(h.A.WinRate), Pct(h.B.WinRate)),
					row("Momentum", strconv.Itoa(h.A.Momentum), strconv.Itoa(h.B.Momentum)),
					row("Status", h.A.Status, h.B.Status),
				})
				if leader := h.Leader(); leader != "" {
					fmt.Fprintf(b, `<p class="mt-3"><strong>%s</strong> has the higher win rate.</p>`, esc(leader))
				} else {
					b.WriteString(`<p class="mt-3">Level on win rate.</p>`)
				}
			})

			card(b, "Together", func(b *builder) {
				b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-4 gap-3 mb-4">`)
				metric(b, "Games together", strconv.Itoa(h.TogetherLine.Played))
				metric(b, "Win rate together", Pct(h.TogetherLine.WinRate))
				metric(b, "Started together", strconv.Itoa(h.Partnership.Games))
				metric(b, "Partnership win rate", Pct(h.Partnership.WinRate))
				b.WriteString(`</div>`)
				rows := make([][]string, 0, len(h.Together))
				for _, m := range stats.ByDateDesc(h.Together) {
					rows = append(rows, []string{DateLabel(m), m.Opponent, m.Competition, m.Score, m.Result.Label()})
				}
				table(b, []string{"Date", "Opponent", "Competition", "Score", "Result"}, rows)
			})
		})
	})
}
