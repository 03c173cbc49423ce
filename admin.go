package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"ibrox-analytics/matchdata"
	"ibrox-analytics/templates"
)

const (
	maxImportSize = 10 << 20
	recentEdits   = 20
)

func (s *Server) session(r *http.Request) *sessions.Session {
	// Get returns a fresh session when the cookie cannot be decoded.
	sess, _ := s.sessionStore.Get(r, sessionName)
	return sess
}

func (s *Server) isAdmin(r *http.Request) bool {
	ok, _ := s.session(r).Values["authenticated"].(bool)
	return ok && s.app.cfg.AdminPassword != ""
}

// requireAdmin rejects requests without a signed-in admin session.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			s.redirectAdmin(w, r, "Please sign in first.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectAdmin stores msg as a flash and sends the browser back to /admin.
func (s *Server) redirectAdmin(w http.ResponseWriter, r *http.Request, msg string) {
	sess := s.session(r)
	if msg != "" {
		sess.AddFlash(msg)
	}
	if err := sess.Save(r, w); err != nil {
		s.app.logger.Warn("failed to save session", "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	var msgs []string
	for _, f := range sess.Flashes() {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	if err := sess.Save(r, w); err != nil {
		s.app.logger.Warn("failed to save session", "error", err)
	}

	if !s.isAdmin(r) {
		data := templates.LoginPageData{Flashes: msgs, Disabled: s.app.cfg.AdminPassword == ""}
		templ.Handler(templates.AdminLogin(data)).ServeHTTP(w, r)
		return
	}

	ds, err := s.app.snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load matches", http.StatusInternalServerError)
		return
	}
	data := templates.AdminPageData{
		Flashes:      msgs,
		DataFile:     s.app.store.Path(),
		Version:      ds.Version,
		Matches:      ds.Matches,
		Players:      ds.Players,
		Competitions: ds.Competitions,
		Seasons:      ds.Seasons,
	}
	if raw := r.URL.Query().Get("row"); raw != "" {
		if row, err := strconv.Atoi(raw); err == nil {
			if m, ok := ds.MatchAt(row); ok {
				data.Editing = &m
			}
		}
	}
	edits, err := s.app.edits.Recent(r.Context(), recentEdits)
	if err != nil {
		s.app.logger.Warn("failed to read edit log", "error", err)
	}
	for _, e := range edits {
		data.Edits = append(data.Edits, templates.EditView{Action: e.Action, Row: e.Row, Label: e.Label, CreatedAt: e.CreatedAt})
	}
	templ.Handler(templates.AdminPanel(data)).ServeHTTP(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	want := s.app.cfg.AdminPassword
	if want == "" || r.FormValue("password") != want {
		s.app.logger.Warn("admin sign in rejected", "remote", r.RemoteAddr)
		s.redirectAdmin(w, r, "Incorrect password.")
		return
	}
	sess := s.session(r)
	sess.Values["authenticated"] = true
	s.app.logger.Info("admin signed in", "remote", r.RemoteAddr)
	s.redirectAdmin(w, r, "")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	delete(sess.Values, "authenticated")
	s.redirectAdmin(w, r, "Signed out.")
}

// parseMatchForm builds a match from the admin form. Date, opponent,
// score, competition, season and a W/D/L result are required.
func parseMatchForm(r *http.Request) (matchdata.Match, error) {
	var m matchdata.Match
	if err := r.ParseForm(); err != nil {
		return m, err
	}
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }

	var missing []string
	for _, name := range []string{"date", "opponent", "score", "competition", "season"} {
		if field(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return m, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return m, fmt.Errorf("invalid date %q", field("date"))
	}
	m.Date = date
	m.Opponent = field("opponent")
	m.Score = field("score")
	m.Competition = field("competition")
	m.Season = field("season")
	m.Result = matchdata.ParseResult(field("result"))
	if !m.Result.Known() {
		return m, fmt.Errorf("result must be Win, Draw or Lose")
	}
	for i := range m.Roster {
		m.Roster[i] = matchdata.CleanName(r.PostFormValue(fmt.Sprintf("p%d", i+1)))
	}
	return m, nil
}

func writeErrorMessage(err error) string {
	switch {
	case errors.Is(err, matchdata.ErrStaleVersion):
		return "The match table changed since you loaded it. Reload and try again."
	case errors.Is(err, matchdata.ErrRowNotFound):
		return "That match no longer exists."
	case errors.Is(err, matchdata.ErrMissingColumn):
		return "Import rejected: " + err.Error()
	}
	return "Save failed: " + err.Error()
}

func (s *Server) formVersion(r *http.Request) (uint64, int, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row")
	}
	version, err := strconv.ParseUint(r.PostFormValue("version"), 10, 64)
	if err != nil || version == 0 {
		return 0, 0, fmt.Errorf("missing version")
	}
	return version, row, nil
}

func (s *Server) handleAddMatch(w http.ResponseWriter, r *http.Request) {
	m, err := parseMatchForm(r)
	if err != nil {
		s.redirectAdmin(w, r, "Match not saved: "+err.Error())
		return
	}
	if err := s.app.store.Append(r.Context(), m); err != nil {
		s.app.logger.Error("append failed", "error", err)
		s.redirectAdmin(w, r, writeErrorMessage(err))
		return
	}
	s.redirectAdmin(w, r, "Added "+m.Label()+".")
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	m, err := parseMatchForm(r)
	if err != nil {
		s.redirectAdmin(w, r, "Match not saved: "+err.Error())
		return
	}
	version, row, err := s.formVersion(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.app.store.Update(r.Context(), version, row, m); err != nil {
		s.redirectAdmin(w, r, writeErrorMessage(err))
		return
	}
	s.redirectAdmin(w, r, "Updated "+m.Label()+".")
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	version, row, err := s.formVersion(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.app.store.Delete(r.Context(), version, row); err != nil {
		s.redirectAdmin(w, r, writeErrorMessage(err))
		return
	}
	s.redirectAdmin(w, r, "Match deleted.")
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.redirectAdmin(w, r, "Upload failed: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.redirectAdmin(w, r, "Choose a CSV file to import.")
		return
	}
	defer file.Close()

	if err := s.app.store.Replace(r.Context(), file); err != nil {
		s.redirectAdmin(w, r, writeErrorMessage(err))
		return
	}
	s.redirectAdmin(w, r, "Imported "+header.Filename+".")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := "matches_" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := s.app.store.Export(r.Context(), w); err != nil {
		s.app.logger.Error("export failed", "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.redirectAdmin(w, r, "Tick the confirmation box to clear every match.")
		return
	}
	if err := s.app.store.Clear(r.Context()); err != nil {
		s.redirectAdmin(w, r, writeErrorMessage(err))
		return
	}
	s.redirectAdmin(w, r, "All matches cleared.")
}
