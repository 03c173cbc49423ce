package templates

import (
	"fmt"

	"github.com/a-h/templ"

	"ibrox-analytics/matchdata"
)

// AdminLogin is the password form shown to signed-out visitors.
func AdminLogin(d LoginPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Admin", "/admin", func(b *builder) {
			flashes(b, d.Flashes)
			card(b, "Admin sign in", func(b *builder) {
				if d.Disabled {
					b.WriteString(`<p>Editing is disabled: no admin password is configured.</p>`)
					return
				}
				b.WriteString(`<form method="post" action="/admin/login" class="flex gap-3 items-end">` +
					`<label class="text-sm font-semibold">Password <input type="password" name="password" class="ml-1 p-2 border rounded-md" autofocus></label>` +
					`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Sign in</button></form>`)
			})
		})
	})
}

// AdminPanel is the match editor.
func AdminPanel(d AdminPageData) templ.Component {
	return component(func(b *builder) {
		page(b, "Admin", "/admin", func(b *builder) {
			flashes(b, d.Flashes)
			card(b, "", func(b *builder) {
				fmt.Fprintf(b, `<div class="flex items-center gap-4"><div><div class="font-bold">%s</div><div class="text-xs text-slate-500">%d matches, version %d</div></div>`,
					esc(d.DataFile), len(d.Matches), d.Version)
				b.WriteString(`<a class="ml-auto text-blue-800 underline" href="/admin/export">Export CSV</a>`)
				b.WriteString(`<form method="post" action="/admin/logout"><button class="border rounded-xl px-4 py-1">Sign out</button></form></div>`)
			})

			title := "Add match"
			if d.Editing != nil {
				title = "Edit " + d.Editing.Label()
			}
			card(b, title, func(b *builder) { matchForm(b, d) })

			card(b, "Matches", func(b *builder) { matchList(b, d) })

			card(b, "Import / clear", func(b *builder) {
				b.WriteString(`<form method="post" action="/admin/import" enctype="multipart/form-data" class="flex gap-3 items-end mb-4">` +
					`<input type="file" name="file" accept=".csv" class="text-sm">` +
					`<button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Replace all matches</button></form>`)
				b.WriteString(`<form method="post" action="/admin/clear" class="flex gap-3 items-center">` +
					`<label class="text-sm"><input type="checkbox" name="confirm" value="yes"> I understand this deletes every match</label>` +
					`<button class="bg-red-700 text-white font-bold py-2 px-5 rounded-xl">Clear</button></form>`)
			})

			card(b, "Recent edits", func(b *builder) {
				rows := make([][]string, 0, len(d.Edits))
				for _, e := range d.Edits {
					row := "-"
					if e.Row >= 0 {
						row = fmt.Sprint(e.Row + 1)
					}
					rows = append(rows, []string{e.CreatedAt.Local().Format("02 Jan 2006 15:04"), e.Action, row, e.Label})
				}
				table(b, []string{"When", "Action", "Row", "Match"}, rows)
			})
		})
	})
}

func datalist(b *builder, id string, values []string) {
	fmt.Fprintf(b, `<datalist id="%s">`, esc(id))
	for _, v := range values {
		fmt.Fprintf(b, `<option value="%s">`, esc(v))
	}
	b.WriteString(`</datalist>`)
}

func input(b *builder, label, name, typ, value, list string) {
	attrs := ""
	if list != "" {
		attrs = fmt.Sprintf(` list="%s"`, esc(list))
	}
	fmt.Fprintf(b, `<label class="text-sm font-semibold flex flex-col">%s<input type="%s" name="%s" value="%s"%s class="p-2 border rounded-md font-normal"></label>`,
		esc(label), typ, esc(name), esc(value), attrs)
}

func matchForm(b *builder, d AdminPageData) {
	var m matchdata.Match
	action := "/admin/matches"
	if d.Editing != nil {
		m = *d.Editing
		action = fmt.Sprintf("/admin/matches/%d", m.Row)
	}
	datalist(b, "players", d.Players)
	datalist(b, "competitions", d.Competitions)
	datalist(b, "seasons", d.Seasons)

	fmt.Fprintf(b, `<form method="post" action="%s" class="space-y-4"><input type="hidden" name="version" value="%d">`, esc(action), d.Version)
	b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-6 gap-3">`)
	date := ""
	if m.Dated() {
		date = m.Date.Format("2006-01-02")
	}
	input(b, "Date", "date", "date", date, "")
	input(b, "Opponent", "opponent", "text", m.Opponent, "")
	input(b, "Competition", "competition", "text", m.Competition, "competitions")
	input(b, "Season", "season", "text", m.Season, "seasons")
	input(b, "Score (Rangers first)", "score", "text", m.Score, "")
	b.WriteString(`<label class="text-sm font-semibold flex flex-col">Result<select name="result" class="p-2 border rounded-md font-normal">`)
	for _, r := range []matchdata.Result{matchdata.Win, matchdata.Draw, matchdata.Loss} {
		sel := ""
		if r == m.Result {
			sel = " selected"
		}
		fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, r, sel, r.Label())
	}
	b.WriteString(`</select></label></div>`)

	b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-6 gap-3">`)
	for i, p := range m.Roster {
		label := fmt.Sprintf("Starter %d", i+1)
		if i >= matchdata.StarterSlots {
			label = fmt.Sprintf("Sub %d", i+1-matchdata.StarterSlots)
		}
		input(b, label, fmt.Sprintf("p%d", i+1), "text", p, "players")
	}
	b.WriteString(`</div><div class="flex gap-3"><button class="bg-blue-800 text-white font-bold py-2 px-5 rounded-xl">Save</button>`)
	if d.Editing != nil {
		b.WriteString(`<a href="/admin" class="py-2 px-5">Cancel</a>`)
	}
	b.WriteString(`</div></form>`)
}

func matchList(b *builder, d AdminPageData) {
	if len(d.Matches) == 0 {
		b.WriteString(`<p class="text-sm text-slate-500">No matches yet.</p>`)
		return
	}
	b.WriteString(`<table class="w-full text-sm"><thead><tr class="text-left text-slate-500"><th>Row</th><th>Match</th><th>Score</th><th>Result</th><th></th></tr></thead><tbody>`)
	for _, m := range d.Matches {
		fmt.Fprintf(b, `<tr class="border-t"><td class="py-1 pr-3">%d</td><td class="pr-3">%s</td><td class="pr-3">%s</td><td class="pr-3">%s</td>`,
			m.Row+1, esc(m.Label()), esc(m.Score), resultBadge(m.Result))
		fmt.Fprintf(b, `<td class="flex gap-2 py-1"><a class="text-blue-800 underline" href="/admin?row=%d">Edit</a>`, m.Row)
		fmt.Fprintf(b, `<form method="post" action="/admin/matches/%d/delete"><input type="hidden" name="version" value="%d"><button class="text-red-700 underline">Delete</button></form></td></tr>`,
			m.Row, d.Version)
	}
	b.WriteString(`</tbody></table>`)
}
