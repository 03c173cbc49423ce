// Package templates renders the dashboard pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"ibrox-analytics/matchdata"
)

var esc = templ.EscapeString[string]

type builder = strings.Builder

func component(fn func(b *builder)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b builder
		fn(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

var navItems = []struct{ Href, Label string }{
	{"/", "Players"},
	{"/h2h", "Head to Head"},
	{"/team", "Team"},
	{"/season", "Seasons"},
	{"/admin", "Admin"},
}

// page wraps body in the shared shell.
func page(b *builder, title, active string, body func(b *builder)) {
	b.WriteString(`<!doctype html><html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`)
	b.WriteString(esc(title))
	b.WriteString(` - Ibrox Analytics</title><script src="https://cdn.tailwindcss.com"></script></head>`)
	b.WriteString(`<body class="bg-slate-100 font-sans text-slate-800"><nav class="bg-blue-800 text-white"><div class="max-w-6xl mx-auto flex gap-6 p-4"><span class="font-black tracking-tight">IBROX ANALYTICS</span>`)
	for _, n := range navItems {
		cls := "opacity-80 hover:opacity-100"
		if n.Href == active {
			cls = "font-bold underline"
		}
		fmt.Fprintf(b, `<a class="%s" href="%s">%s</a>`, cls, n.Href, esc(n.Label))
	}
	b.WriteString(`</div></nav><main class="max-w-6xl mx-auto p-4 space-y-6">`)
	body(b)
	b.WriteString(`</main></body></html>`)
}

func card(b *builder, title string, body func(b *builder)) {
	b.WriteString(`<section class="bg-white rounded-2xl shadow p-5">`)
	if title != "" {
		fmt.Fprintf(b, `<h2 class="text-lg font-bold mb-3">%s</h2>`, esc(title))
	}
	body(b)
	b.WriteString(`</section>`)
}

func metric(b *builder, label, value string) {
	fmt.Fprintf(b, `<div class="bg-slate-50 rounded-xl p-3"><div class="text-xs uppercase text-slate-500">%s</div><div class="text-2xl font-extrabold">%s</div></div>`,
		esc(label), esc(value))
}

func flashes(b *builder, msgs []string) {
	for _, m := range msgs {
		fmt.Fprintf(b, `<div class="bg-amber-100 border border-amber-300 rounded-xl p-3">%s</div>`, esc(m))
	}
}

func selectBox(b *builder, name, label, selected string, options []string, allLabel string) {
	fmt.Fprintf(b, `<label class="text-sm font-semibold">%s <select name="%s" class="ml-1 p-2 border rounded-md">`, esc(label), esc(name))
	if allLabel != "" {
		fmt.Fprintf(b, `<option value="">%s</option>`, esc(allLabel))
	}
	for _, o := range options {
		sel := ""
		if o == selected {
			sel = " selected"
		}
		fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, esc(o), sel, esc(o))
	}
	b.WriteString(`</select></label>`)
}

func filterSelects(b *builder, f FilterData) {
	selectBox(b, "season", "Season", f.Season, f.Seasons, "All seasons")
	selectBox(b, "competition", "Competition", f.Competition, f.Competitions, "All competitions")
}

func table(b *builder, header []string, rows [][]string) {
	if len(rows) == 0 {
		b.WriteString(`<p class="text-sm text-slate-500">No data.</p>`)
		return
	}
	b.WriteString(`<table class="w-full text-sm"><thead><tr class="text-left text-slate-500">`)
	for _, h := range header {
		fmt.Fprintf(b, `<th class="py-1 pr-3">%s</th>`, esc(h))
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, r := range rows {
		b.WriteString(`<tr class="border-t">`)
		for _, c := range r {
			fmt.Fprintf(b, `<td class="py-1 pr-3">%s</td>`, esc(c))
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

// Pct formats a percentage with one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// DateLabel formats a match date, or "-" for undated matches.
func DateLabel(m matchdata.Match) string {
	if !m.Dated() {
		return "-"
	}
	return m.Date.Format("02 Jan 2006")
}

func resultBadge(r matchdata.Result) string {
	cls := "bg-slate-300"
	switch r {
	case matchdata.Win:
		cls = "bg-green-600 text-white"
	case matchdata.Draw:
		cls = "bg-amber-400"
	case matchdata.Loss:
		cls = "bg-red-600 text-white"
	}
	label := string(r)
	if label == "" {
		label = "?"
	}
	return fmt.Sprintf(`<span class="inline-block w-7 text-center rounded font-bold %s">%s</span>`, cls, esc(label))
}

func playerHref(name string, f FilterData) string {
	q := url.Values{}
	q.Set("player", name)
	if f.Season != "" {
		q.Set("season", f.Season)
	}
	if f.Competition != "" {
		q.Set("competition", f.Competition)
	}
	return "/?" + q.Encode()
}
