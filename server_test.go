package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibrox-analytics/internal/testutil"
	"ibrox-analytics/stats"
)

const testMatches = "Day,Month,Year,Opponent,Competition,Score (Rangers First),Win/Lose/Draw,Tag Season,R1,R2,R3,R12\n" +
	"1,9,2024,Celtic,Premiership,2-1,Win,2024/25,Butland,Tavernier,Goldson,Lammers\n" +
	"8,9,2024,Hearts,Premiership,0-0,Draw,2024/25,Butland,Tavernier,Souttar,\n" +
	"15,9,2024,Aberdeen,League Cup,1-2,Lose,2024/25,Butland,Goldson,Souttar,Tavernier\n" +
	"3,5,2024,Hibs,Premiership,3-0,Win,2023/24,McGregor,Tavernier,Goldson,\n"

func testConfig(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return &Config{
		DataFile:        path,
		Database:        ":memory:",
		Port:            DefaultPort,
		AdminPassword:   "hampden",
		SessionSecret:   "test-session-secret-0123456789abcdef",
		MomentumWindow:  stats.DefaultMomentumWindow,
		MinPartnerGames: 1,
		TopTeammates:    10,
		CacheTTL:        time.Minute,
	}
}

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	app, err := newApp(t.Context(), cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func newTestServer(t *testing.T, cfg *Config) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(NewServer(newTestApp(t, cfg)).Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// =============================================================================
// Pages
// =============================================================================

func TestPages(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"dashboard default player", "/", []string{"Butland"}},
		{"dashboard named player", "/?player=Goldson", []string{"Goldson"}},
		{"dashboard unknown player", "/?player=Nobody", []string{"No appearances for this selection."}},
		{"dashboard random", "/?random=1", []string{"Players - Ibrox Analytics"}},
		{"head to head", "/h2h?p1=Tavernier&p2=Goldson", []string{"Tavernier", "Goldson", "Games together"}},
		{"head to head same player", "/h2h?p1=Goldson&p2=Goldson", []string{"Pick two different players"}},
		{"team", "/team", []string{"By competition", "Celtic"}},
		{"season", "/season?season=2023/24", []string{"2023/24", "Hibs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, c, ts.URL+tt.path)
			assert.Equal(t, http.StatusOK, status)
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestPages_EmptyTable(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, ""))

	for _, path := range []string{"/", "/h2h", "/team", "/season"} {
		status, _ := get(t, c, ts.URL+path)
		assert.Equal(t, http.StatusOK, status, path)
	}
	_, body := get(t, c, ts.URL+"/season")
	assert.Contains(t, body, "No seasons in the match table yet.")
}

// =============================================================================
// API
// =============================================================================

func TestAPI_Players(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	status, body := get(t, c, ts.URL+"/api/players")
	require.Equal(t, http.StatusOK, status)

	var resp playersResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, []string{"Butland", "Goldson", "Lammers", "McGregor", "Souttar", "Tavernier"}, resp.Players)
	assert.Equal(t, []string{"2024/25", "2023/24"}, resp.Seasons)
	assert.Equal(t, []string{"League Cup", "Premiership"}, resp.Competitions)
	assert.Zero(t, resp.Rejected)
}

func TestAPI_Player(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantRoles  stats.Roles
		wantWins   int
	}{
		{"all matches", "/api/players/Tavernier", http.StatusOK, stats.Roles{Starts: 3, Subs: 1, Total: 4}, 2},
		{"season filter", "/api/players/Tavernier?season=2024/25", http.StatusOK, stats.Roles{Starts: 2, Subs: 1, Total: 3}, 1},
		{"competition filter", "/api/players/Goldson?competition=League+Cup", http.StatusOK, stats.Roles{Starts: 1, Total: 1}, 0},
		{"unknown filter value is ignored", "/api/players/Goldson?season=1999", http.StatusOK, stats.Roles{Starts: 3, Total: 3}, 2},
		{"unknown player", "/api/players/Nobody", http.StatusNotFound, stats.Roles{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, c, ts.URL+tt.path)
			require.Equal(t, tt.wantStatus, status)
			if status != http.StatusOK {
				return
			}
			var s struct {
				Roles  stats.Roles  `json:"roles"`
				Record stats.Record `json:"record"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &s))
			assert.Equal(t, tt.wantRoles, s.Roles)
			assert.Equal(t, tt.wantWins, s.Record.Wins)
		})
	}
}

func TestAPI_HeadToHead(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	status, _ := get(t, c, ts.URL+"/api/h2h?a=Tavernier")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = get(t, c, ts.URL+"/api/h2h?a=Tavernier&b=Nobody")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := get(t, c, ts.URL+"/api/h2h?a=Tavernier&b=Goldson")
	require.Equal(t, http.StatusOK, status)
	var h struct {
		TogetherLine stats.RecordLine  `json:"together_line"`
		Partnership  stats.Partnership `json:"partnership"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	// Celtic, Aberdeen (Tavernier on the bench) and Hibs.
	assert.Equal(t, 3, h.TogetherLine.Played)
	// Only Celtic and Hibs have both starting.
	assert.Equal(t, stats.Partnership{Games: 2, Wins: 2, WinRate: 100}, h.Partnership)
}

func TestPlayerMatchesCSV(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	resp, err := c.Get(ts.URL + "/players/Goldson/matches.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Date", "Opponent", "Competition", "Score", "Result", "Role"}, records[0])
	assert.Equal(t, []string{"2024-09-15", "Aberdeen", "League Cup", "1-2", "Lose", "Starter"}, records[1])

	status, _ := get(t, c, ts.URL+"/players/Nobody/matches.csv")
	assert.Equal(t, http.StatusNotFound, status)
}

// =============================================================================
// Admin
// =============================================================================

func matchForm(version string) url.Values {
	return url.Values{
		"version":     {version},
		"date":        {"2024-09-22"},
		"opponent":    {"Hibs"},
		"competition": {"Premiership"},
		"season":      {"2024/25"},
		"score":       {"3-1"},
		"result":      {"W"},
		"p1":          {"Butland"},
		"p2":          {" Dessers "},
		"p12":         {"nan"},
	}
}

func TestAdmin_RequiresLogin(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	status, body := get(t, c, ts.URL+"/admin")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Admin sign in")

	_, body = post(t, c, ts.URL+"/admin/matches", matchForm("1"))
	assert.Contains(t, body, "Please sign in first.")

	_, body = post(t, c, ts.URL+"/admin/login", url.Values{"password": {"wrong"}})
	assert.Contains(t, body, "Incorrect password.")

	_, body = get(t, c, ts.URL+"/api/players")
	assert.NotContains(t, body, "Dessers")
}

func TestAdmin_LoginCookieOverHTTP(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := c.PostForm(ts.URL+"/admin/login", url.Values{"password": {"hampden"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionName {
			session = ck
		}
	}
	require.NotNil(t, session, "login sets the session cookie")
	assert.False(t, session.Secure, "plain HTTP clients must get the cookie back")
	assert.True(t, session.HttpOnly)
	for _, h := range resp.Header.Values("Set-Cookie") {
		assert.NotContains(t, h, "; Secure")
	}

	// The jar stored the cookie, so the next request is signed in.
	_, body := get(t, c, ts.URL+"/admin")
	assert.Contains(t, body, "Add match")
}

func TestAdmin_DisabledWithoutPassword(t *testing.T) {
	cfg := testConfig(t, testMatches)
	cfg.AdminPassword = ""
	ts, c := newTestServer(t, cfg)

	_, body := get(t, c, ts.URL+"/admin")
	assert.Contains(t, body, "Editing is disabled")

	_, body = post(t, c, ts.URL+"/admin/login", url.Values{"password": {""}})
	assert.Contains(t, body, "Incorrect password.")
}

func TestAdmin_EditFlow(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))

	_, body := post(t, c, ts.URL+"/admin/login", url.Values{"password": {"hampden"}})
	require.Contains(t, body, "Add match")

	_, body = post(t, c, ts.URL+"/admin/matches", matchForm("1"))
	assert.Contains(t, body, "Added 2024-09-22 vs Hibs (Premiership).")
	assert.Contains(t, body, "append")

	_, body = get(t, c, ts.URL+"/api/players")
	assert.Contains(t, body, `"Dessers"`)

	// The append bumped the version, so a form rendered before it is stale.
	_, body = post(t, c, ts.URL+"/admin/matches/0", matchForm("1"))
	assert.Contains(t, body, "The match table changed since you loaded it.")

	_, body = post(t, c, ts.URL+"/admin/matches/0", matchForm("2"))
	assert.Contains(t, body, "Updated 2024-09-22 vs Hibs (Premiership).")

	_, body = post(t, c, ts.URL+"/admin/matches/99/delete", url.Values{"version": {"3"}})
	assert.Contains(t, body, "That match no longer exists.")

	_, body = post(t, c, ts.URL+"/admin/matches/0/delete", url.Values{"version": {"3"}})
	assert.Contains(t, body, "Match deleted.")

	bad := matchForm("4")
	bad.Set("result", "?")
	_, body = post(t, c, ts.URL+"/admin/matches", bad)
	assert.Contains(t, body, "result must be Win, Draw or Lose")

	bad = matchForm("4")
	bad.Del("date")
	bad.Del("score")
	_, body = post(t, c, ts.URL+"/admin/matches", bad)
	assert.Contains(t, body, "missing date, score")

	_, body = post(t, c, ts.URL+"/admin/clear", url.Values{})
	assert.Contains(t, body, "Tick the confirmation box")

	_, body = post(t, c, ts.URL+"/admin/clear", url.Values{"confirm": {"yes"}})
	assert.Contains(t, body, "All matches cleared.")
	assert.Contains(t, body, "0 matches")

	_, body = post(t, c, ts.URL+"/admin/logout", url.Values{})
	assert.Contains(t, body, "Signed out.")
	assert.Contains(t, body, "Admin sign in")
}

func TestAdmin_ExportAndImport(t *testing.T) {
	ts, c := newTestServer(t, testConfig(t, testMatches))
	_, _ = post(t, c, ts.URL+"/admin/login", url.Values{"password": {"hampden"}})

	resp, err := c.Get(ts.URL + "/admin/export")
	require.NoError(t, err)
	exported, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Equal(t, testMatches, string(exported))

	upload := func(content string) string {
		var buf strings.Builder
		buf.WriteString("--BOUNDARY\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="file"; filename="new.csv"` + "\r\n")
		buf.WriteString("Content-Type: text/csv\r\n\r\n")
		buf.WriteString(content)
		buf.WriteString("\r\n--BOUNDARY--\r\n")

		resp, err := c.Post(ts.URL+"/admin/import", "multipart/form-data; boundary=BOUNDARY", strings.NewReader(buf.String()))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	body := upload("Opponent,Score\nCeltic,1-0\n")
	assert.Contains(t, body, "Import rejected")

	body = upload("Day,Month,Year,Opponent,Win/Lose/Draw,R1\n4,10,2024,Kilmarnock,Win,Cortes\n")
	assert.Contains(t, body, "Imported new.csv.")

	_, body = get(t, c, ts.URL+"/api/players")
	assert.Contains(t, body, `"players":["Cortes"]`)
}
