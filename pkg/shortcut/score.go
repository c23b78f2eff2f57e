package shortcut

import (
	"math"
	"sort"
	"time"

	"github.com/suggestbox/suggestbox/internal/store"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// WeightFunc maps the age of a candidate's most recent click to a recency
// weight in (0, 1]. A candidate's rank score is its combined hit count times
// this weight, so the function is the single tuning point for the
// recency/frequency trade-off.
type WeightFunc func(age time.Duration) float64

// ExponentialDecay returns a WeightFunc that halves the weight every
// halfLife. With the default half-life a handful of recent clicks outranks a
// large click count from weeks ago, while candidates clicked at the same
// moment rank purely by count.
func ExponentialDecay(halfLife time.Duration) WeightFunc {
	return func(age time.Duration) float64 {
		if age <= 0 {
			return 1
		}
		return math.Pow(0.5, float64(age)/float64(halfLife))
	}
}

// Shortcut is one ranked result: the cached suggestion payload plus the
// statistics that put it there.
type Shortcut struct {
	suggest.Suggestion
	Query    string    `json:"query"` // historical query of the payload row
	HitCount int       `json:"hit_count"`
	LastHit  time.Time `json:"last_hit"`
	Score    float64   `json:"score"`
}

// rank turns matched rows into an ordered, truncated shortcut list:
// age filter, optional per-entity reduction, score, sort, cut.
func rank(stats []store.ShortcutStat, now time.Time, maxAge time.Duration, mergeEntities bool, weight WeightFunc, limit int) []Shortcut {
	var candidates []Shortcut
	for _, st := range stats {
		if now.Sub(st.LastHit()) > maxAge {
			continue
		}
		candidates = append(candidates, Shortcut{
			Suggestion: st.Suggestion,
			Query:      st.Query,
			HitCount:   st.HitCount,
			LastHit:    st.LastHit(),
		})
	}

	if mergeEntities {
		candidates = reduceByEntity(candidates)
	}

	for i := range candidates {
		candidates[i].Score = float64(candidates[i].HitCount) * weight(now.Sub(candidates[i].LastHit))
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if ak, bk := a.Key(), b.Key(); ak != bk {
			return ak < bk
		}
		return a.Query < b.Query
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// reduceByEntity combines the surviving rows of each entity into one
// candidate: counts sum, the latest click time wins, and the payload comes
// from the row that was hit last. Used for the zero-query view, where all of
// an entity's historical queries match at once. Identity is the derived key,
// so empty-id suggestions with distinct intents stay distinct.
func reduceByEntity(candidates []Shortcut) []Shortcut {
	type entityKey struct {
		source suggest.SourceID
		id     string
	}

	byEntity := make(map[entityKey]Shortcut)
	var order []entityKey

	for _, c := range candidates {
		key := entityKey{c.Source, c.Key()}
		cur, ok := byEntity[key]
		if !ok {
			byEntity[key] = c
			order = append(order, key)
			continue
		}

		cur.HitCount += c.HitCount
		if c.LastHit.After(cur.LastHit) ||
			(c.LastHit.Equal(cur.LastHit) && c.Query < cur.Query) {
			c.HitCount = cur.HitCount
			cur = c
		}
		byEntity[key] = cur
	}

	merged := make([]Shortcut, 0, len(order))
	for _, key := range order {
		merged = append(merged, byEntity[key])
	}
	return merged
}
