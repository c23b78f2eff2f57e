package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// SourceRSS is the identity of the feed-backed suggestion source.
const SourceRSS = suggest.SourceID("rss")

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// RSS suggests recent articles from RSS/Atom feeds. Live sources are free to
// match loosely; here any article whose title contains the typed query
// qualifies. Only clicks feed the exact-prefix shortcut log.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
}

// NewRSS creates a feed-backed suggestion source.
func NewRSS(feeds []Feed) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

func (r *RSS) ID() suggest.SourceID { return SourceRSS }

func (r *RSS) Suggest(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
	var all []suggest.Suggestion

	for _, feed := range r.feeds {
		suggestions, err := r.suggestFeed(ctx, feed, query)
		if err != nil {
			fmt.Printf("  rss feed %s error: %v\n", feed.Name, err)
			continue
		}
		all = append(all, suggestions...)
		if limit > 0 && len(all) >= limit {
			all = all[:limit]
			break
		}
	}

	return all, nil
}

func (r *RSS) suggestFeed(ctx context.Context, feed Feed, query string) ([]suggest.Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "suggestbox/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	needle := strings.ToLower(query)

	var suggestions []suggest.Suggestion
	for _, entry := range parsed.Items {
		if needle != "" && !strings.Contains(strings.ToLower(entry.Title), needle) {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		id := entry.GUID
		if id == "" {
			id = link
		}

		suggestions = append(suggestions, suggest.Suggestion{
			Source:       SourceRSS,
			ShortcutID:   id,
			Text1:        entry.Title,
			Text2:        feed.Name,
			IntentAction: "open",
			IntentData:   link,
			LogType:      "rss",
		})
	}

	return suggestions, nil
}
