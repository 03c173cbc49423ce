package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ibrox-analytics/matchdata"
	"ibrox-analytics/stats"
)

// App bundles what both the server and the CLI commands work against.
type App struct {
	cfg    *Config
	logger *slog.Logger
	store  *matchdata.Store
	edits  *EditLog
	cache  *summaryCache
}

// newApp opens the edit log and the match store described by cfg.
func newApp(ctx context.Context, cfg *Config, logger *slog.Logger) (*App, error) {
	edits, err := openEditLog(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	store := matchdata.NewStore(cfg.DataFile,
		matchdata.WithLogger(logger),
		matchdata.WithRecorder(edits),
	)
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		edits:  edits,
		cache:  newSummaryCache(cfg.CacheTTL),
	}, nil
}

// Close releases the edit log.
func (a *App) Close() error {
	return a.edits.Close()
}

// snapshot returns the current dataset.
func (a *App) snapshot(ctx context.Context) (*matchdata.Dataset, error) {
	ds, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	return ds, nil
}

// playerSummary returns the summary of player over the filtered dataset,
// served from the cache while the dataset version is unchanged.
func (a *App) playerSummary(ds *matchdata.Dataset, f stats.Filter, player string) stats.PlayerSummary {
	key := summaryKey{version: ds.Version, filter: f, player: player}
	return a.cache.get(key, func() stats.PlayerSummary {
		a.logger.Debug("computing player summary", "player", player, "season", f.Season, "competition", f.Competition, "version", ds.Version)
		return stats.Summarize(f.Apply(ds.Matches), player, a.cfg.StatsOptions())
	})
}

// compare builds the head-to-head of a and b over the filtered dataset.
func (a *App) compare(ds *matchdata.Dataset, f stats.Filter, p1, p2 string) stats.HeadToHead {
	return stats.Compare(f.Apply(ds.Matches), p1, p2, a.cfg.StatsOptions())
}

type summaryKey struct {
	version uint64
	filter  stats.Filter
	player  string
}

type summaryCacheEntry struct {
	Summary stats.PlayerSummary
	Time    time.Time
}

// summaryCache holds computed player summaries. Entries are only valid for
// the dataset version in their key; a TTL of zero disables caching.
type summaryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	version uint64
	data    map[summaryKey]summaryCacheEntry
	now     func() time.Time
}

func newSummaryCache(ttl time.Duration) *summaryCache {
	return &summaryCache{
		ttl:  ttl,
		data: make(map[summaryKey]summaryCacheEntry),
		now:  time.Now,
	}
}

func (c *summaryCache) get(key summaryKey, compute func() stats.PlayerSummary) stats.PlayerSummary {
	if c.ttl <= 0 {
		return compute()
	}

	c.mu.Lock()
	if ent, ok := c.data[key]; ok {
		if c.now().Sub(ent.Time) < c.ttl {
			c.mu.Unlock()
			return ent.Summary
		}
		delete(c.data, key)
	}
	c.mu.Unlock()

	summary := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if key.version < c.version {
		return summary
	}
	if key.version > c.version {
		// Older versions can never be asked for again.
		clear(c.data)
		c.version = key.version
	}
	c.data[key] = summaryCacheEntry{Summary: summary, Time: c.now()}
	return summary
}

// size reports the number of cached entries.
func (c *summaryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
