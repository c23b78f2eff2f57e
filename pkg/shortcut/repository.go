package shortcut

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/suggestbox/suggestbox/internal/store"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// Config holds the scoring and ranking tunables.
type Config struct {
	// MaxStatAge is how long a click keeps counting toward shortcut ranking.
	MaxStatAge time.Duration
	// MaxSourceEventAge is the (typically longer) window for source ranking.
	MaxSourceEventAge time.Duration
	// MinClicksForSourceRanking excludes sources with fewer clicks from the
	// source ranking entirely.
	MinClicksForSourceRanking int
	// MaxShortcutsReturned caps the result list of a shortcut query.
	MaxShortcutsReturned int
	// Weight is the recency/frequency trade-off curve.
	Weight WeightFunc
	// RefreshingIconURI replaces Icon2 on results whose payload asked for a
	// spinner while refreshing.
	RefreshingIconURI string
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxStatAge:                30 * 24 * time.Hour,
		MaxSourceEventAge:         30 * 24 * time.Hour,
		MinClicksForSourceRanking: 3,
		MaxShortcutsReturned:      12,
		Weight:                    ExponentialDecay(24 * time.Hour),
		RefreshingIconURI:         "suggestbox:refreshing",
	}
}

// Repository is the public face of the personalization cache: it records
// clicks on suggestions and serves ranked shortcut lists and source rankings
// derived from them.
type Repository struct {
	store store.Store
	cfg   Config
}

// NewRepository creates a Repository over the given store. Zero-valued
// config fields fall back to DefaultConfig.
func NewRepository(s store.Store, cfg Config) *Repository {
	def := DefaultConfig()
	if cfg.MaxStatAge == 0 {
		cfg.MaxStatAge = def.MaxStatAge
	}
	if cfg.MaxSourceEventAge == 0 {
		cfg.MaxSourceEventAge = def.MaxSourceEventAge
	}
	if cfg.MinClicksForSourceRanking == 0 {
		cfg.MinClicksForSourceRanking = def.MinClicksForSourceRanking
	}
	if cfg.MaxShortcutsReturned == 0 {
		cfg.MaxShortcutsReturned = def.MaxShortcutsReturned
	}
	if cfg.Weight == nil {
		cfg.Weight = def.Weight
	}
	if cfg.RefreshingIconURI == "" {
		cfg.RefreshingIconURI = def.RefreshingIconURI
	}
	return &Repository{store: s, cfg: cfg}
}

// ReportClick records a click at the current time.
func (r *Repository) ReportClick(ctx context.Context, query string, s suggest.Suggestion) error {
	return r.ReportClickAt(ctx, query, s, time.Now())
}

// ReportClickAt records that the user, having typed query, clicked the given
// suggestion at the given time. Suggestions marked never-shortcut are
// silently dropped.
func (r *Repository) ReportClickAt(ctx context.Context, query string, s suggest.Suggestion, at time.Time) error {
	if !s.Shortcuttable() {
		return nil
	}
	if err := r.store.RecordClick(ctx, query, s, at); err != nil {
		return fmt.Errorf("report click: %w", err)
	}
	return nil
}

// ShortcutsFor returns the ranked shortcuts for a typed query, best first,
// as of now. The empty query matches everything and collapses each entity's
// rows into a single result. A nil slice means nothing matched.
func (r *Repository) ShortcutsFor(ctx context.Context, query string, now time.Time) ([]Shortcut, error) {
	stats, err := r.store.Candidates(ctx, store.CandidateOpts{
		Prefix: query,
		Since:  now.Add(-r.cfg.MaxStatAge),
	})
	if err != nil {
		return nil, fmt.Errorf("shortcuts for %q: %w", query, err)
	}

	ranked := rank(stats, now, r.cfg.MaxStatAge, query == "", r.cfg.Weight, r.cfg.MaxShortcutsReturned)

	for i := range ranked {
		if ranked[i].SpinnerWhileRefreshing {
			ranked[i].Icon2 = r.cfg.RefreshingIconURI
		}
	}
	return ranked, nil
}

// RefreshShortcut replaces the cached payload of every row of the entity,
// keeping its click statistics. A nil payload invalidates the entity instead:
// all its rows are removed and the next click starts a fresh record.
// Refreshing an unknown entity is a no-op.
func (r *Repository) RefreshShortcut(ctx context.Context, source suggest.SourceID, shortcutID string, payload *suggest.Suggestion) error {
	if err := r.store.RefreshEntity(ctx, source, shortcutID, payload); err != nil {
		return fmt.Errorf("refresh shortcut: %w", err)
	}
	return nil
}

// InvalidateShortcut forgets the entity entirely.
func (r *Repository) InvalidateShortcut(ctx context.Context, source suggest.SourceID, shortcutID string) error {
	return r.RefreshShortcut(ctx, source, shortcutID, nil)
}

// HasHistory reports whether any click is recorded.
func (r *Repository) HasHistory(ctx context.Context) (bool, error) {
	return r.store.HasHistory(ctx)
}

// ClearHistory deletes the entire click log.
func (r *Repository) ClearHistory(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// SourceRank is one entry of the source ranking.
type SourceRank struct {
	Source suggest.SourceID `json:"source"`
	Clicks int              `json:"clicks"`
}

// SourceRanking ranks suggestion sources by their summed clicks within the
// source-event window, highest first. Sources below the minimum click
// threshold are absent, not last. Ties order by source id.
func (r *Repository) SourceRanking(ctx context.Context, now time.Time) ([]SourceRank, error) {
	totals, err := r.store.SourceTotals(ctx, now.Add(-r.cfg.MaxSourceEventAge))
	if err != nil {
		return nil, fmt.Errorf("source ranking: %w", err)
	}

	var ranks []SourceRank
	for _, t := range totals {
		if t.Clicks < r.cfg.MinClicksForSourceRanking {
			continue
		}
		ranks = append(ranks, SourceRank{Source: t.Source, Clicks: t.Clicks})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Clicks != ranks[j].Clicks {
			return ranks[i].Clicks > ranks[j].Clicks
		}
		return ranks[i].Source < ranks[j].Source
	})
	return ranks, nil
}
