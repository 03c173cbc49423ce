package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibrox-analytics/matchdata"
)

func TestWatchDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matches.csv")
	writeFile(t, path, testMatches)

	// The debounce timer can log after the test returns, so nothing here
	// writes through t.Log.
	logger := slog.New(slog.DiscardHandler)
	store := matchdata.NewStore(path, matchdata.WithLogger(logger))
	ds, err := store.Snapshot(t.Context())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- watchDataFile(ctx, store, logger) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "notes.txt"), "not the match table\n")
	require.NoError(t, store.Append(ctx, matchdata.Match{
		Date:     time.Date(2024, time.September, 22, 0, 0, 0, 0, time.UTC),
		Opponent: "Hibs",
		Result:   matchdata.Win,
	}))
	own := store.Version()
	require.Equal(t, ds.Version+1, own)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, own, store.Version(), "own writes and other files do not trigger a refresh")

	require.NoError(t, os.WriteFile(path, []byte(testMatches+"22,9,2024,Kilmarnock,Premiership,2-0,Win,2024/25,Cortes,,,\n"), 0o600))
	require.Eventually(t, func() bool {
		return store.Version() > own
	}, 5*time.Second, 20*time.Millisecond, "external edit bumps the version")

	got, err := store.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Contains(t, got.Players, "Cortes")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
