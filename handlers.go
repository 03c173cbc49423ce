package main

import (
	"encoding/csv"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"ibrox-analytics/matchdata"
	"ibrox-analytics/stats"
	"ibrox-analytics/templates"
)

// Team page list sizes.
const (
	topOpponents      = 15
	topAppearances    = 20
	topWinRates       = 10
	minWinRateMatches = 5
)

// filterFromQuery reads the season/competition selectors. "All" and unknown
// values select everything.
func filterFromQuery(q url.Values, ds *matchdata.Dataset) (stats.Filter, templates.FilterData) {
	pick := func(v string, known []string) string {
		v = strings.TrimSpace(v)
		for _, k := range known {
			if k == v {
				return v
			}
		}
		return ""
	}
	f := stats.Filter{
		Season:      pick(q.Get("season"), ds.Seasons),
		Competition: pick(q.Get("competition"), ds.Competitions),
	}
	return f, templates.FilterData{
		Seasons:      ds.Seasons,
		Competitions: ds.Competitions,
		Season:       f.Season,
		Competition:  f.Competition,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	f, fd := filterFromQuery(q, ds)

	player := strings.TrimSpace(q.Get("player"))
	if q.Get("random") != "" && len(ds.Players) > 0 {
		player = ds.Players[rand.IntN(len(ds.Players))]
	}
	if player == "" && len(ds.Players) > 0 {
		player = ds.Players[0]
	}

	var summary stats.PlayerSummary
	if player != "" {
		summary = s.app.playerSummary(ds, f, player)
	}
	data := templates.PlayerPageData{
		Filter:   fd,
		Players:  ds.Players,
		Summary:  summary,
		Found:    summary.Roles.Total > 0,
		Rejected: len(ds.Rejected),
	}
	templ.Handler(templates.PlayerPage(data)).ServeHTTP(w, r)
}

func (s *Server) handleHeadToHead(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	f, fd := filterFromQuery(q, ds)

	p1, p2 := strings.TrimSpace(q.Get("p1")), strings.TrimSpace(q.Get("p2"))
	if p1 == "" && p2 == "" && len(ds.Players) > 1 {
		p1, p2 = ds.Players[0], ds.Players[1]
	}
	data := templates.H2HPageData{Filter: fd, Players: ds.Players, P1: p1, P2: p2}
	if p1 != "" && p2 != "" && p1 != p2 {
		h := s.app.compare(ds, f, p1, p2)
		data.Result = &h
	}
	templ.Handler(templates.H2HPage(data)).ServeHTTP(w, r)
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	f, fd := filterFromQuery(r.URL.Query(), ds)
	ms := f.Apply(ds.Matches)

	data := templates.TeamPageData{
		Filter:       fd,
		Record:       stats.TeamRecord(ms),
		Competitions: stats.ByCompetition(ms),
		Opponents:    stats.ByOpponent(ms, topOpponents),
		Monthly:      stats.Monthly(ms),
		Appearances:  stats.AppearanceRanking(ms, topAppearances),
		BestWinRates: stats.BestWinRates(ms, minWinRateMatches, topWinRates),
		MinGames:     minWinRateMatches,
	}
	templ.Handler(templates.TeamPage(data)).ServeHTTP(w, r)
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	f, _ := filterFromQuery(r.URL.Query(), ds)
	season := f.Season
	if season == "" && len(ds.Seasons) > 0 {
		season = ds.Seasons[0]
	}

	data := templates.SeasonPageData{Seasons: ds.Seasons, Season: season}
	if season != "" {
		ms := stats.Filter{Season: season}.Apply(ds.Matches)
		data.Record = stats.TeamRecord(ms)
		data.Competitions = stats.ByCompetition(ms)
		data.Timeline = stats.SeasonTimeline(ms)
		data.Appearances = stats.AppearanceRanking(ms, topAppearances)
	}
	templ.Handler(templates.SeasonPage(data)).ServeHTTP(w, r)
}

// handlePlayerMatchesCSV exports the player's match history.
func (s *Server) handlePlayerMatchesCSV(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	name := chi.URLParam(r, "name")
	if !ds.HasPlayer(name) {
		http.Error(w, "Unknown player", http.StatusNotFound)
		return
	}
	f, _ := filterFromQuery(r.URL.Query(), ds)
	summary := s.app.playerSummary(ds, f, name)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`_matches.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Date", "Opponent", "Competition", "Score", "Result", "Role"})
	for _, m := range summary.Matches {
		date := ""
		if m.Dated() {
			date = m.Date.Format("2006-01-02")
		}
		_ = cw.Write([]string{date, m.Opponent, m.Competition, m.Score, m.Result.Label(), string(m.Role)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.app.logger.Error("failed to write player export", "player", name, "error", err)
	}
}

type playersResponse struct {
	Version      uint64   `json:"version"`
	Players      []string `json:"players"`
	Seasons      []string `json:"seasons"`
	Competitions []string `json:"competitions"`
	Opponents    []string `json:"opponents"`
	Rejected     int      `json:"rejected_rows"`
}

func (s *Server) handleAPIPlayers(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, playersResponse{
		Version:      ds.Version,
		Players:      ds.Players,
		Seasons:      ds.Seasons,
		Competitions: ds.Competitions,
		Opponents:    ds.Opponents,
		Rejected:     len(ds.Rejected),
	})
}

func (s *Server) handleAPIPlayer(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	name := chi.URLParam(r, "name")
	if !ds.HasPlayer(name) {
		http.Error(w, "Unknown player", http.StatusNotFound)
		return
	}
	f, _ := filterFromQuery(r.URL.Query(), ds)
	writeJSON(w, http.StatusOK, s.app.playerSummary(ds, f, name))
}

func (s *Server) handleAPIHeadToHead(w http.ResponseWriter, r *http.Request) {
	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		http.Error(w, "Both a and b are required", http.StatusBadRequest)
		return
	}
	for _, p := range []string{a, b} {
		if !ds.HasPlayer(p) {
			http.Error(w, "Unknown player: "+p, http.StatusNotFound)
			return
		}
	}
	f, _ := filterFromQuery(q, ds)
	writeJSON(w, http.StatusOK, s.app.compare(ds, f, a, b))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
