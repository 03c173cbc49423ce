package matchdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibrox-analytics/internal/testutil"
)

type recorder struct {
	mu    sync.Mutex
	edits []Edit
}

func (r *recorder) RecordEdit(_ context.Context, e Edit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, e)
	return nil
}

func newTestStore(t *testing.T, content string) (*Store, *recorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	rec := &recorder{}
	return NewStore(path, WithLogger(testutil.NewTestLogger(t)), WithRecorder(rec)), rec
}

func fixture(day int, opp string, res Result, players ...string) Match {
	m := Match{
		Date:        time.Date(2024, time.September, day, 0, 0, 0, 0, time.UTC),
		Opponent:    opp,
		Competition: "Premiership",
		Season:      "2024/25",
		Score:       "1-0",
		Result:      res,
	}
	copy(m.Roster[:], players)
	return m
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s, _ := newTestStore(t, "")
	ds, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Matches)
	assert.Equal(t, uint64(1), ds.Version)
}

func TestStore_ReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, "")

	before, err := s.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, fixture(1, "Celtic", Win, "A", "B")))
	require.NoError(t, s.Append(ctx, fixture(8, "Hearts", Loss, "A")))

	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Greater(t, after.Version, before.Version)
	require.Len(t, after.Matches, 2)
	assert.Equal(t, "Hearts", after.Matches[0].Opponent)
	assert.Equal(t, Loss, after.Matches[0].Result)
	assert.Equal(t, 1, after.Matches[0].Row)
	assert.Equal(t, []string{"A", "B"}, after.Players)

	same, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, after, same, "snapshot is cached per version")

	require.Len(t, rec.edits, 2)
	assert.Equal(t, ActionAppend, rec.edits[0].Action)
	assert.Equal(t, 0, rec.edits[0].Row)
	assert.Equal(t, "2024-09-01 vs Celtic (Premiership)", rec.edits[0].Label)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, "Day,Month,Year,Opponent,Competition,Score (Rangers First),Win/Lose/Draw,Tag Season,Notes,R1\n"+
		"1,9,2024,Celtic,Premiership,1-0,Win,2024/25,derby,A\n"+
		"8,9,2024,Hearts,Premiership,0-1,Lose,2024/25,,A\n")

	ds, err := s.Snapshot(ctx)
	require.NoError(t, err)

	upd := fixture(1, "Celtic", Draw, "A", "C")
	upd.Score = "1-1"
	require.NoError(t, s.Update(ctx, ds.Version, 0, upd))

	got, err := s.Snapshot(ctx)
	require.NoError(t, err)
	m, ok := got.MatchAt(0)
	require.True(t, ok)
	assert.Equal(t, Draw, m.Result)
	assert.Equal(t, "1-1", m.Score)
	assert.Equal(t, "C", m.Roster[1])

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))
	assert.Contains(t, buf.String(), "derby", "unknown columns survive a rewrite")

	t.Run("stale version", func(t *testing.T) {
		err := s.Delete(ctx, ds.Version, 1)
		assert.ErrorIs(t, err, ErrStaleVersion)
	})

	t.Run("row out of range", func(t *testing.T) {
		err := s.Update(ctx, got.Version, 9, upd)
		assert.ErrorIs(t, err, ErrRowNotFound)
		assert.Equal(t, got.Version, s.Version(), "failed writes do not bump the version")
	})

	require.NoError(t, s.Delete(ctx, got.Version, 1))
	final, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, final.Matches, 1)
	assert.Equal(t, "Celtic", final.Matches[0].Opponent)

	last := rec.edits[len(rec.edits)-1]
	assert.Equal(t, Edit{Action: ActionDelete, Row: 1, Label: "Hearts"}, last)
}

func TestStore_ExtraCellsSurviveRewrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "Day,Month,Year,Opponent,Competition,Score (Rangers First),Win/Lose/Draw,Tag Season,R1\n"+
		"1,9,2024,Celtic,Premiership,1-0,Win,2024/25,A,extra note\n"+
		"8,9,2024,Hearts,Premiership,0-1,Lose,2024/25,A\n")

	ds, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, ds.Version, 0, fixture(1, "Celtic", Draw, "A", "C")))

	got, err := s.Snapshot(ctx)
	require.NoError(t, err)
	m, ok := got.MatchAt(0)
	require.True(t, ok)
	assert.Equal(t, "C", m.Roster[1])

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))
	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	head := records[0]
	assert.Equal(t, DefaultHeader(), head)
	require.Len(t, records[1], len(head)+1)
	assert.Equal(t, "extra note", records[1][len(head)], "trailing cell stays past the header")
	assert.Equal(t, "C", records[1][9])
	assert.Equal(t, "Draw", records[1][6])
	assert.Len(t, records[2], len(head), "untouched rows are widened to the new header")
}

func TestStore_ReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "")
	require.NoError(t, s.Append(ctx, fixture(1, "Celtic", Win, "A")))

	err := s.Replace(ctx, strings.NewReader("Opponent,R1\nHibs,A\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	ds, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Matches, 1, "invalid imports leave the table alone")

	require.NoError(t, s.Replace(ctx, strings.NewReader(
		"Day,Month,Year,Opponent,Win/Lose/Draw,R1\n2,2,2024,Hibs,W,B\n3,2,2024,Ross County,D,B\n",
	)))
	ds, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Matches, 2)
	assert.Equal(t, []string{"B"}, ds.Players)

	require.NoError(t, s.Clear(ctx))
	ds, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Matches)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))
	assert.Equal(t, "Day,Month,Year,Opponent,Win/Lose/Draw,R1\n", buf.String())
}

func TestStore_Refresh(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, header+"1,9,2024,Celtic,Premiership,1-0,Win,2024/25,A,,\n")

	ds, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, s.Refresh(), "unchanged file")

	require.NoError(t, s.Append(ctx, fixture(2, "Hibs", Win, "A")))
	assert.False(t, s.Refresh(), "own writes are already accounted for")

	require.NoError(t, os.WriteFile(s.Path(), []byte(header+"1,9,2024,Celtic,Premiership,1-0,Win,2024/25,Z,,\n"), 0o600))
	assert.True(t, s.Refresh())
	assert.Greater(t, s.Version(), ds.Version+1)

	got, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, got.Players)
}
