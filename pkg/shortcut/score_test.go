package shortcut

import (
	"math"
	"testing"
	"time"

	"github.com/suggestbox/suggestbox/internal/store"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

func TestExponentialDecay(t *testing.T) {
	w := ExponentialDecay(24 * time.Hour)

	if got := w(0); got != 1 {
		t.Errorf("w(0) = %v, want 1", got)
	}
	if got := w(-time.Hour); got != 1 {
		t.Errorf("w(-1h) = %v, want 1 (clock skew must not boost)", got)
	}
	if got := w(24 * time.Hour); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("w(halfLife) = %v, want 0.5", got)
	}
	if got := w(48 * time.Hour); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("w(2*halfLife) = %v, want 0.25", got)
	}

	// Strictly decreasing, never zero.
	prev := w(time.Minute)
	for _, age := range []time.Duration{time.Hour, 24 * time.Hour, 30 * 24 * time.Hour} {
		cur := w(age)
		if cur >= prev {
			t.Errorf("w(%v) = %v, not below w at shorter age %v", age, cur, prev)
		}
		if cur <= 0 {
			t.Errorf("w(%v) = %v, must stay positive", age, cur)
		}
		prev = cur
	}
}

func statAt(source suggest.SourceID, id, query string, hits int, at time.Time) store.ShortcutStat {
	return store.ShortcutStat{
		Suggestion:  suggest.Suggestion{Source: source, ShortcutID: id, Text1: id},
		Query:       query,
		HitCount:    hits,
		LastHitTime: at.UnixMilli(),
	}
}

func TestRankAgeBoundary(t *testing.T) {
	now := time.UnixMilli(1239841162000)
	maxAge := 30 * 24 * time.Hour
	w := ExponentialDecay(24 * time.Hour)

	stats := []store.ShortcutStat{
		statAt("apps", "exact", "q", 1, now.Add(-maxAge)),
		statAt("apps", "stale", "q", 1, now.Add(-maxAge-time.Millisecond)),
	}

	got := rank(stats, now, maxAge, false, w, 0)
	if len(got) != 1 || got[0].ShortcutID != "exact" {
		t.Fatalf("rank = %+v, want only the row aged exactly maxAge", got)
	}
}

func TestRankScoresAndSorts(t *testing.T) {
	now := time.UnixMilli(1239841162000)
	w := ExponentialDecay(24 * time.Hour)

	stats := []store.ShortcutStat{
		statAt("apps", "few_recent", "q", 2, now),
		statAt("apps", "many_old", "q", 10, now.Add(-10*24*time.Hour)),
	}

	got := rank(stats, now, 30*24*time.Hour, false, w, 0)
	if len(got) != 2 {
		t.Fatalf("rank returned %d results, want 2", len(got))
	}
	// 2 * 1.0 vs 10 * 2^-10.
	if got[0].ShortcutID != "few_recent" {
		t.Errorf("order = [%s %s], want few_recent first", got[0].ShortcutID, got[1].ShortcutID)
	}
	if got[0].Score != 2 {
		t.Errorf("score of fresh row = %v, want exactly hit count 2", got[0].Score)
	}
}

func TestRankLimit(t *testing.T) {
	now := time.UnixMilli(1239841162000)
	w := ExponentialDecay(24 * time.Hour)

	var stats []store.ShortcutStat
	for _, id := range []string{"a", "b", "c", "d"} {
		stats = append(stats, statAt("apps", id, "q", 1, now))
	}

	if got := rank(stats, now, time.Hour, false, w, 2); len(got) != 2 {
		t.Fatalf("rank with limit 2 returned %d results", len(got))
	}
	if got := rank(stats, now, time.Hour, false, w, 0); len(got) != 4 {
		t.Fatalf("rank with limit 0 returned %d results, want all 4", len(got))
	}
}

func TestReduceByEntity(t *testing.T) {
	older := time.UnixMilli(1239841162000)
	newer := older.Add(time.Hour)

	in := []Shortcut{
		{
			Suggestion: suggest.Suggestion{Source: "apps", ShortcutID: "x", Text1: "old title"},
			Query:      "first", HitCount: 2, LastHit: older,
		},
		{
			Suggestion: suggest.Suggestion{Source: "apps", ShortcutID: "x", Text1: "new title"},
			Query:      "second", HitCount: 3, LastHit: newer,
		},
		{
			Suggestion: suggest.Suggestion{Source: "contacts", ShortcutID: "x", Text1: "other entity"},
			Query:      "first", HitCount: 1, LastHit: older,
		},
	}

	out := reduceByEntity(in)
	if len(out) != 2 {
		t.Fatalf("reduceByEntity returned %d entities, want 2", len(out))
	}

	apps := out[0]
	if apps.HitCount != 5 {
		t.Errorf("merged hit count = %d, want 5", apps.HitCount)
	}
	if !apps.LastHit.Equal(newer) {
		t.Errorf("merged last hit = %v, want the newer click %v", apps.LastHit, newer)
	}
	if apps.Text1 != "new title" || apps.Query != "second" {
		t.Errorf("merged payload = %q/%q, want the latest row's", apps.Text1, apps.Query)
	}

	if out[1].Source != "contacts" || out[1].HitCount != 1 {
		t.Errorf("colliding id across sources merged: %+v", out[1])
	}
}

func TestReduceByEntityTieOnTime(t *testing.T) {
	at := time.UnixMilli(1239841162000)

	in := []Shortcut{
		{
			Suggestion: suggest.Suggestion{Source: "apps", ShortcutID: "x", Text1: "b row"},
			Query:      "b", HitCount: 1, LastHit: at,
		},
		{
			Suggestion: suggest.Suggestion{Source: "apps", ShortcutID: "x", Text1: "a row"},
			Query:      "a", HitCount: 1, LastHit: at,
		},
	}

	out := reduceByEntity(in)
	if len(out) != 1 {
		t.Fatalf("reduceByEntity returned %d entities, want 1", len(out))
	}
	if out[0].Query != "a" {
		t.Errorf("equal-time payload pick = %q, want the lexically smaller query", out[0].Query)
	}
}
